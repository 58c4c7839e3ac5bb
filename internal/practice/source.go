package practice

import (
	"context"

	"github.com/eduin/eduin-backend/internal/model"
)

// QuestionSource returns the ordered question set for a filter. The session
// presents questions in exactly the returned order.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error)
}

// SourceFunc adapts a function to QuestionSource.
type SourceFunc func(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error)

func (f SourceFunc) FetchQuestions(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	return f(ctx, filter)
}

// CategorySource returns the subject/chapter choices for an exam or class.
type CategorySource interface {
	CategoryConfig(ctx context.Context, typ model.CategoryType, value string) (model.SubjectChapters, error)
}
