package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/practice"
	"github.com/eduin/eduin-backend/internal/repository"
	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// envelope mirrors response.Response with the data left undecoded.
type envelope struct {
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, env envelope, status int, code response.ErrCode) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (%s)", w.Code, status, w.Body.String())
	}
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", env.Error, code)
	}
}

// stillTicker never fires, keeping countdowns frozen in tests.
type stillTicker struct{ ch chan time.Time }

func (s stillTicker) C() <-chan time.Time { return s.ch }
func (s stillTicker) Stop()               {}

func noTicks(time.Duration) practice.Ticker { return stillTicker{ch: make(chan time.Time)} }

type memQuestions struct {
	mu        sync.Mutex
	questions map[int64]model.Question
	nextID    int64
}

func newMemQuestions(qs ...model.Question) *memQuestions {
	m := &memQuestions{questions: make(map[int64]model.Question)}
	for i := range qs {
		_ = m.Create(context.Background(), &qs[i])
	}
	return m
}

func (m *memQuestions) sorted() []model.Question {
	out := make([]model.Question, 0, len(m.questions))
	for _, q := range m.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memQuestions) ListRandom(_ context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sorted()
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memQuestions) ListPaginated(_ context.Context, filter model.AdminQuestionFilter) ([]model.Question, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted()
	_, perPage, offset := filter.Paging()
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (m *memQuestions) ForEach(_ context.Context, _ model.AdminQuestionFilter, fn func(model.Question) error) error {
	m.mu.Lock()
	all := m.sorted()
	m.mu.Unlock()
	for _, q := range all {
		if err := fn(q); err != nil {
			return err
		}
	}
	return nil
}

func (m *memQuestions) GetByID(_ context.Context, id int64) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (m *memQuestions) Create(_ context.Context, q *model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	q.ID = m.nextID
	m.questions[q.ID] = *q
	return nil
}

func (m *memQuestions) Update(_ context.Context, q *model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; !ok {
		return repository.ErrNotFound
	}
	m.questions[q.ID] = *q
	return nil
}

func (m *memQuestions) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.questions, id)
	return nil
}

type memCategories struct {
	mu         sync.Mutex
	categories []model.Category
}

func (m *memCategories) List(context.Context) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Category(nil), m.categories...), nil
}

func (m *memCategories) GetByTypeValue(_ context.Context, typ model.CategoryType, value string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Type == typ && c.Value == value {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCategories) Create(_ context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Type == c.Type && existing.Value == c.Value {
			return repository.ErrDuplicate
		}
	}
	c.ID = len(m.categories) + 1
	m.categories = append(m.categories, *c)
	return nil
}

func (m *memCategories) UpdateConfig(_ context.Context, id int, cfg model.SubjectChapters) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.categories {
		if m.categories[i].ID == id {
			m.categories[i].Config = cfg
			c := m.categories[i]
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func sampleQuestions() []model.Question {
	return []model.Question{
		{QuestionText: "2+2?", OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "6", CorrectOption: "B"},
		{QuestionText: "Capital of France?", OptionA: "Paris", OptionB: "Rome", OptionC: "Oslo", OptionD: "Bern", CorrectOption: "A"},
		{QuestionText: "H2O is?", OptionA: "Salt", OptionB: "Air", OptionC: "Water", OptionD: "Fire", CorrectOption: "C"},
	}
}
