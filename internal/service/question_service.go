package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/validator"
)

// maxReportedBulkErrors caps the row errors returned from a bulk upload.
const maxReportedBulkErrors = 10

// QuestionStore is the question persistence used by QuestionService.
type QuestionStore interface {
	ListRandom(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error)
	ListPaginated(ctx context.Context, filter model.AdminQuestionFilter) ([]model.Question, int, error)
	ForEach(ctx context.Context, filter model.AdminQuestionFilter, fn func(model.Question) error) error
	GetByID(ctx context.Context, id int64) (*model.Question, error)
	Create(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id int64) error
}

// QuestionService handles question retrieval and admin CRUD. It is the
// QuestionSource for server-hosted practice sessions.
type QuestionService struct {
	store QuestionStore
	log   zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(store QuestionStore, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		store: store,
		log:   log.With().Str("component", "question_service").Logger(),
	}
}

// FetchQuestions returns a random question set for filter.
func (s *QuestionService) FetchQuestions(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	return s.store.ListRandom(ctx, filter.Normalize())
}

// List returns a page of questions for the admin console.
func (s *QuestionService) List(ctx context.Context, filter model.AdminQuestionFilter) ([]model.Question, int, error) {
	return s.store.ListPaginated(ctx, filter)
}

// Get retrieves a question by ID.
func (s *QuestionService) Get(ctx context.Context, id int64) (*model.Question, error) {
	return s.store.GetByID(ctx, id)
}

// Create stores a new question.
func (s *QuestionService) Create(ctx context.Context, req *model.QuestionRequest) (*model.Question, error) {
	q := req.ToQuestion()
	if err := s.store.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Update replaces a question.
func (s *QuestionService) Update(ctx context.Context, id int64, req *model.QuestionRequest) (*model.Question, error) {
	q := req.ToQuestion()
	q.ID = id
	if err := s.store.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a question.
func (s *QuestionService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// BulkCreate inserts rows one at a time so a bad row does not sink the upload.
// Rows are numbered from 1; only the first few failures are reported.
func (s *QuestionService) BulkCreate(ctx context.Context, rows []model.QuestionRequest) model.BulkResult {
	res := model.BulkResult{Errors: make([]model.BulkRowError, 0)}

	for i := range rows {
		err := s.createRow(ctx, &rows[i])
		if err == nil {
			res.SuccessCount++
			continue
		}
		res.ErrorCount++
		if len(res.Errors) < maxReportedBulkErrors {
			res.Errors = append(res.Errors, model.BulkRowError{Row: i + 1, Error: err.Error()})
		}
	}

	s.log.Info().
		Int("success", res.SuccessCount).
		Int("failed", res.ErrorCount).
		Msg("Bulk question upload finished")
	return res
}

func (s *QuestionService) createRow(ctx context.Context, row *model.QuestionRequest) error {
	if err := binding.Validator.ValidateStruct(row); err != nil {
		return fmt.Errorf("%s", joinFieldErrors(validator.TranslateErrors(err)))
	}
	return s.store.Create(ctx, row.ToQuestion())
}

func joinFieldErrors(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return strings.Join(msgs, "; ")
}
