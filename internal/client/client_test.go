package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/response"
)

func TestFetchQuestions(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/questions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"questions":[
			{"id":1,"question_text":"2+2?","option_a":"3","option_b":"4","option_c":"5","option_d":"6","correct_option":"B"},
			{"id":2,"question_text":"H2O?","option_a":"Water","option_b":"Salt","option_c":"Air","option_d":"Fire","correct_option":"A"}
		]},"metadata":{"request_id":"r1","timestamp":"now"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	got, err := c.FetchQuestions(context.Background(), model.QuestionFilter{
		Exam: "NEET", Subject: "Physics", Limit: 20,
	})
	if err != nil {
		t.Fatalf("FetchQuestions: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].CorrectOption != "A" {
		t.Fatalf("questions = %+v", got)
	}
	if want := "exam=NEET&limit=20&subject=Physics"; gotQuery != want {
		t.Fatalf("query = %q, want %q", gotQuery, want)
	}
}

func TestFetchQuestionsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"data":null,"error":{"code":"VALIDATION_ERROR","message":"Validation failed"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).FetchQuestions(context.Background(), model.QuestionFilter{Standard: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != response.ErrValidation {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestFetchQuestionsNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).FetchQuestions(context.Background(), model.QuestionFilter{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway || apiErr.Code != "" {
		t.Fatalf("err = %v", err)
	}
}

func TestFetchQuestionsCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(srv.URL).FetchQuestions(ctx, model.QuestionFilter{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCategoryConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "exam" || r.URL.Query().Get("value") != "JEE" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data":{"config":{"Physics":["Kinematics","Optics"],"Chemistry":["Atoms"]}}}`))
	}))
	defer srv.Close()

	cfg, err := New(srv.URL).CategoryConfig(context.Background(), model.CategoryTypeExam, "JEE")
	if err != nil {
		t.Fatalf("CategoryConfig: %v", err)
	}
	subjects := cfg.Subjects()
	if len(subjects) != 2 || subjects[0] != "Physics" || subjects[1] != "Chemistry" {
		t.Fatalf("subjects = %v", subjects)
	}
	if ch := cfg.Chapters("Physics"); len(ch) != 2 || ch[1] != "Optics" {
		t.Fatalf("chapters = %v", ch)
	}
}
