package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/service"
)

func newQuestionRouter(store *memQuestions) *gin.Engine {
	h := NewQuestionHandler(
		service.NewQuestionService(store, zerolog.Nop()),
		service.NewExportService(store, zerolog.Nop()),
		zerolog.Nop(),
	)
	r := gin.New()
	r.GET("/api/v1/questions", h.PracticeQuestions)
	admin := r.Group("/api/v1/admin/questions")
	admin.GET("", h.ListQuestions)
	admin.POST("", h.CreateQuestion)
	admin.POST("/bulk", h.BulkCreateQuestions)
	admin.GET("/export", h.ExportQuestions)
	admin.GET("/:id", h.GetQuestion)
	admin.PUT("/:id", h.UpdateQuestion)
	admin.DELETE("/:id", h.DeleteQuestion)
	return r
}

func questionBody(text, correct string) gin.H {
	return gin.H{
		"question_text":  text,
		"option_a":       "one",
		"option_b":       "two",
		"option_c":       "three",
		"option_d":       "four",
		"correct_option": correct,
	}
}

func TestPracticeQuestions(t *testing.T) {
	r := newQuestionRouter(newMemQuestions(sampleQuestions()...))

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/questions?exam=JEE&chapter=All%20Chapters&difficulty=Mixed&limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var data struct {
		Questions []model.Question `json:"questions"`
	}
	decodeData(t, env, &data)
	if len(data.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(data.Questions))
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/questions?difficulty=Extreme", nil)
	expectError(t, w, env, http.StatusBadRequest, response.ErrValidation)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/questions?standard=ten", nil)
	expectError(t, w, env, http.StatusBadRequest, response.ErrValidation)
}

func TestQuestionCRUD(t *testing.T) {
	r := newQuestionRouter(newMemQuestions())

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/admin/questions", questionBody("What is 1+1?", "b"))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Question model.Question `json:"question"`
	}
	decodeData(t, env, &created)
	if created.Question.ID == 0 || created.Question.CorrectOption != "B" {
		t.Fatalf("created = %+v", created.Question)
	}

	w, env = doJSON(t, r, http.MethodPut, "/api/v1/admin/questions/1", questionBody("What is 2+2?", "D"))
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d", w.Code)
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/admin/questions/1", nil)
	var got struct {
		Question model.Question `json:"question"`
	}
	decodeData(t, env, &got)
	if got.Question.QuestionText != "What is 2+2?" || got.Question.CorrectOption != "D" {
		t.Fatalf("after update = %+v", got.Question)
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/admin/questions", nil)
	if w.Code != http.StatusOK || env.Pagination == nil || env.Pagination.TotalItems != 1 {
		t.Fatalf("list status = %d pagination = %+v", w.Code, env.Pagination)
	}

	if w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/admin/questions/1", nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w, env = doJSON(t, r, http.MethodDelete, "/api/v1/admin/questions/1", nil)
	expectError(t, w, env, http.StatusNotFound, response.ErrNotFound)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/admin/questions/abc", nil)
	expectError(t, w, env, http.StatusBadRequest, response.ErrInvalidID)

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/admin/questions", questionBody("", "E"))
	expectError(t, w, env, http.StatusBadRequest, response.ErrValidation)
	for _, field := range []string{"question_text", "correct_option"} {
		if env.Error.Fields[field] == "" {
			t.Errorf("missing field error for %s: %v", field, env.Error.Fields)
		}
	}
}

func TestBulkCreateQuestions(t *testing.T) {
	store := newMemQuestions()
	r := newQuestionRouter(store)

	rows := []gin.H{questionBody("ok 1", "A"), questionBody("", "A"), questionBody("ok 2", "C")}
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/admin/questions/bulk", gin.H{"questions": rows})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var res model.BulkResult
	decodeData(t, env, &res)
	if res.SuccessCount != 2 || res.ErrorCount != 1 || len(res.Errors) != 1 || res.Errors[0].Row != 2 {
		t.Fatalf("result = %+v", res)
	}
	if len(store.questions) != 2 {
		t.Fatalf("stored %d questions, want 2", len(store.questions))
	}

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/admin/questions/bulk", gin.H{"questions": []gin.H{}})
	expectError(t, w, env, http.StatusBadRequest, response.ErrValidation)
}

func TestExportQuestions(t *testing.T) {
	r := newQuestionRouter(newMemQuestions(sampleQuestions()...))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/questions/export", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("Content-Type = %q", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Questions")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
}
