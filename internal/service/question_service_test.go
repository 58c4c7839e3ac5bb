package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/repository"
	"github.com/eduin/eduin-backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

func validRequest(text string) model.QuestionRequest {
	return model.QuestionRequest{
		QuestionText:  text,
		OptionA:       "1",
		OptionB:       "2",
		OptionC:       "3",
		OptionD:       "4",
		CorrectOption: "b",
	}
}

func TestFetchQuestionsNormalizesFilter(t *testing.T) {
	store := newFakeQuestions()
	svc := NewQuestionService(store, zerolog.Nop())

	_, err := svc.FetchQuestions(context.Background(), model.QuestionFilter{
		Exam:       "JEE",
		Chapter:    model.AllChapters,
		Difficulty: model.DifficultyMixed,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := model.QuestionFilter{Exam: "JEE", Limit: model.DefaultQuestionLimit}
	if store.lastQuery != want {
		t.Fatalf("query = %+v, want %+v", store.lastQuery, want)
	}

	_, _ = svc.FetchQuestions(context.Background(), model.QuestionFilter{Limit: 5000})
	if store.lastQuery.Limit != model.MaxQuestionLimit {
		t.Fatalf("limit = %d, want clamp to %d", store.lastQuery.Limit, model.MaxQuestionLimit)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewQuestionService(newFakeQuestions(), zerolog.Nop())

	req := validRequest("What is 1+1?")
	q, err := svc.Create(ctx, &req)
	if err != nil {
		t.Fatal(err)
	}
	if q.CorrectOption != "B" {
		t.Fatalf("correct option = %q, want normalized B", q.CorrectOption)
	}

	req.QuestionText = "What is 2+2?"
	req.CorrectOption = "D"
	if _, err := svc.Update(ctx, q.ID, &req); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Get(ctx, q.ID)
	if got.QuestionText != "What is 2+2?" || got.CorrectOption != "D" {
		t.Fatalf("updated question = %+v", got)
	}

	if _, err := svc.Update(ctx, 999, &req); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
	if err := svc.Delete(ctx, q.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, q.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestBulkCreateReportsRowErrors(t *testing.T) {
	store := newFakeQuestions()
	svc := NewQuestionService(store, zerolog.Nop())

	rows := []model.QuestionRequest{validRequest("ok 1")}
	for i := 0; i < 12; i++ {
		bad := validRequest("bad")
		bad.CorrectOption = "E"
		rows = append(rows, bad)
	}
	missing := validRequest("")
	rows = append(rows, missing, validRequest("ok 2"))

	res := svc.BulkCreate(context.Background(), rows)
	if res.SuccessCount != 2 || res.ErrorCount != 13 {
		t.Fatalf("success = %d errors = %d, want 2 13", res.SuccessCount, res.ErrorCount)
	}
	if len(res.Errors) != maxReportedBulkErrors {
		t.Fatalf("reported %d errors, want %d", len(res.Errors), maxReportedBulkErrors)
	}
	if res.Errors[0].Row != 2 {
		t.Fatalf("first error row = %d, want 2", res.Errors[0].Row)
	}
	if !strings.Contains(res.Errors[0].Error, "correct_option") {
		t.Fatalf("error message = %q", res.Errors[0].Error)
	}
	if len(store.questions) != 2 {
		t.Fatalf("stored %d questions, want 2", len(store.questions))
	}
}
