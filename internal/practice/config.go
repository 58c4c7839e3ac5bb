package practice

import (
	"fmt"
	"strconv"

	"github.com/eduin/eduin-backend/internal/model"
)

// SelectionType chooses between exam-based and class-based practice.
type SelectionType string

const (
	SelectionExam  SelectionType = "exam"
	SelectionClass SelectionType = "class"
)

// Bounds on a practice configuration.
const (
	MinQuestionCount  = 5
	MaxQuestionCount  = 100
	QuestionCountStep = 5
	MaxTimeLimit      = 180
)

// Config describes one practice attempt. It is immutable once the session starts.
type Config struct {
	SelectionType SelectionType `json:"type" binding:"required,oneof=exam class"`
	Value         string        `json:"value" binding:"required,max=100"`
	Difficulty    string        `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard Mixed"`
	QuestionCount int           `json:"limit" binding:"required,min=5,max=100"`
	Subject       string        `json:"subject" binding:"omitempty,max=100"`
	Chapter       string        `json:"chapter" binding:"omitempty,max=200"`
	TimeLimit     int           `json:"time_limit" binding:"min=0,max=180"` // minutes, 0 = unlimited
}

func (c Config) withDefaults() Config {
	if c.Difficulty == "" {
		c.Difficulty = model.DifficultyMixed
	}
	if c.Chapter == "" {
		c.Chapter = model.AllChapters
	}
	return c
}

// Validate checks the configuration against the practice bounds.
func (c Config) Validate() error {
	switch c.SelectionType {
	case SelectionExam:
		if c.Value == "" {
			return fmt.Errorf("%w: exam is required", ErrInvalidConfig)
		}
	case SelectionClass:
		if _, err := strconv.Atoi(c.Value); err != nil {
			return fmt.Errorf("%w: class must be a number, got %q", ErrInvalidConfig, c.Value)
		}
	default:
		return fmt.Errorf("%w: unknown selection type %q", ErrInvalidConfig, c.SelectionType)
	}

	switch c.Difficulty {
	case "", model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard, model.DifficultyMixed:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, c.Difficulty)
	}

	if c.QuestionCount < MinQuestionCount || c.QuestionCount > MaxQuestionCount ||
		c.QuestionCount%QuestionCountStep != 0 {
		return fmt.Errorf("%w: question count must be %d-%d in steps of %d",
			ErrInvalidConfig, MinQuestionCount, MaxQuestionCount, QuestionCountStep)
	}

	if c.TimeLimit < 0 || c.TimeLimit > MaxTimeLimit {
		return fmt.Errorf("%w: time limit must be 0-%d minutes", ErrInvalidConfig, MaxTimeLimit)
	}
	return nil
}

// Filter translates the configuration into a question query.
func (c Config) Filter() model.QuestionFilter {
	f := model.QuestionFilter{
		Subject: c.Subject,
		Limit:   c.QuestionCount,
	}
	switch c.SelectionType {
	case SelectionExam:
		f.Exam = c.Value
	case SelectionClass:
		f.Standard = c.Value
	}
	if c.Difficulty != model.DifficultyMixed {
		f.Difficulty = c.Difficulty
	}
	if c.Chapter != model.AllChapters {
		f.Chapter = c.Chapter
	}
	return f
}
