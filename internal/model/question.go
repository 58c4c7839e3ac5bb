package model

import (
	"strings"
	"time"
)

// Option slots of a multiple-choice question.
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

// OptionKeys lists the option slots in presentation order.
var OptionKeys = []string{OptionA, OptionB, OptionC, OptionD}

// Difficulty levels stored on questions. DifficultyMixed is a filter value only.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
	DifficultyMixed  = "Mixed"
)

// AllChapters is the chapter filter value meaning "no chapter filter".
const AllChapters = "All Chapters"

// Question is a single multiple-choice practice question.
type Question struct {
	ID               int64     `json:"id"`
	QuestionText     string    `json:"question_text"`
	QuestionImage    *string   `json:"question_image,omitempty"`
	OptionA          string    `json:"option_a"`
	OptionAImage     *string   `json:"option_a_image,omitempty"`
	OptionB          string    `json:"option_b"`
	OptionBImage     *string   `json:"option_b_image,omitempty"`
	OptionC          string    `json:"option_c"`
	OptionCImage     *string   `json:"option_c_image,omitempty"`
	OptionD          string    `json:"option_d"`
	OptionDImage     *string   `json:"option_d_image,omitempty"`
	CorrectOption    string    `json:"correct_option"`
	Explanation      *string   `json:"explanation,omitempty"`
	ExplanationImage *string   `json:"explanation_image,omitempty"`
	Difficulty       *string   `json:"difficulty,omitempty"`
	Exam             *string   `json:"exam,omitempty"`
	Board            *string   `json:"board,omitempty"`
	Class            *int      `json:"class,omitempty"`
	Subject          *string   `json:"subject,omitempty"`
	Chapter          *string   `json:"chapter,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// OptionText returns the text in the given option slot.
func (q *Question) OptionText(key string) string {
	switch NormalizeOption(key) {
	case OptionA:
		return q.OptionA
	case OptionB:
		return q.OptionB
	case OptionC:
		return q.OptionC
	case OptionD:
		return q.OptionD
	}
	return ""
}

// IsCorrect reports whether key selects the correct option.
func (q *Question) IsCorrect(key string) bool {
	return NormalizeOption(key) == NormalizeOption(q.CorrectOption)
}

// NormalizeOption upper-cases and trims an option key.
func NormalizeOption(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// ValidOption reports whether key names one of the four option slots.
func ValidOption(key string) bool {
	switch NormalizeOption(key) {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// QuestionFilter selects questions for a practice set. Empty fields do not filter.
type QuestionFilter struct {
	Exam       string `form:"exam" binding:"omitempty,max=100"`
	Standard   string `form:"standard" binding:"omitempty,numeric"`
	Subject    string `form:"subject" binding:"omitempty,max=100"`
	Chapter    string `form:"chapter" binding:"omitempty,max=200"`
	Difficulty string `form:"difficulty" binding:"omitempty,oneof=Easy Medium Hard Mixed"`
	Limit      int    `form:"limit" binding:"omitempty,min=1"`
}

// Normalize drops the sentinel "no filter" values and clamps the limit.
func (f QuestionFilter) Normalize() QuestionFilter {
	if f.Chapter == AllChapters {
		f.Chapter = ""
	}
	if f.Difficulty == DifficultyMixed {
		f.Difficulty = ""
	}
	if f.Limit <= 0 {
		f.Limit = DefaultQuestionLimit
	}
	if f.Limit > MaxQuestionLimit {
		f.Limit = MaxQuestionLimit
	}
	return f
}

// Limits applied to public question fetches.
const (
	DefaultQuestionLimit = 20
	MaxQuestionLimit     = 100
)

// AdminQuestionFilter is the query for the admin question list.
type AdminQuestionFilter struct {
	Exam       string `form:"exam"`
	Subject    string `form:"subject"`
	Chapter    string `form:"chapter"`
	Difficulty string `form:"difficulty"`
	Search     string `form:"search" binding:"omitempty,max=200"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PerPage    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Paging returns the page, page size and row offset with defaults applied.
func (f AdminQuestionFilter) Paging() (page, perPage, offset int) {
	page, perPage = f.Page, f.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return page, perPage, (page - 1) * perPage
}

// QuestionRequest is the payload for creating or updating a question.
type QuestionRequest struct {
	QuestionText     string  `json:"question_text" binding:"required,min=1,max=5000"`
	QuestionImage    *string `json:"question_image" binding:"omitempty,max=500"`
	OptionA          string  `json:"option_a" binding:"required,max=1000"`
	OptionAImage     *string `json:"option_a_image" binding:"omitempty,max=500"`
	OptionB          string  `json:"option_b" binding:"required,max=1000"`
	OptionBImage     *string `json:"option_b_image" binding:"omitempty,max=500"`
	OptionC          string  `json:"option_c" binding:"required,max=1000"`
	OptionCImage     *string `json:"option_c_image" binding:"omitempty,max=500"`
	OptionD          string  `json:"option_d" binding:"required,max=1000"`
	OptionDImage     *string `json:"option_d_image" binding:"omitempty,max=500"`
	CorrectOption    string  `json:"correct_option" binding:"required,oneof=A B C D a b c d"`
	Explanation      *string `json:"explanation" binding:"omitempty,max=5000"`
	ExplanationImage *string `json:"explanation_image" binding:"omitempty,max=500"`
	Difficulty       *string `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	Exam             *string `json:"exam" binding:"omitempty,max=100"`
	Board            *string `json:"board" binding:"omitempty,max=100"`
	Class            *int    `json:"class" binding:"omitempty,min=1,max=12"`
	Subject          *string `json:"subject" binding:"omitempty,max=100"`
	Chapter          *string `json:"chapter" binding:"omitempty,max=200"`
}

// ToQuestion converts the request into a Question.
func (r *QuestionRequest) ToQuestion() *Question {
	return &Question{
		QuestionText:     r.QuestionText,
		QuestionImage:    r.QuestionImage,
		OptionA:          r.OptionA,
		OptionAImage:     r.OptionAImage,
		OptionB:          r.OptionB,
		OptionBImage:     r.OptionBImage,
		OptionC:          r.OptionC,
		OptionCImage:     r.OptionCImage,
		OptionD:          r.OptionD,
		OptionDImage:     r.OptionDImage,
		CorrectOption:    NormalizeOption(r.CorrectOption),
		Explanation:      r.Explanation,
		ExplanationImage: r.ExplanationImage,
		Difficulty:       r.Difficulty,
		Exam:             r.Exam,
		Board:            r.Board,
		Class:            r.Class,
		Subject:          r.Subject,
		Chapter:          r.Chapter,
	}
}

// BulkQuestionsRequest is the payload for bulk question upload.
type BulkQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,max=1000"`
}

// BulkRowError describes a row that failed during bulk upload.
type BulkRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// BulkResult summarizes a bulk upload.
type BulkResult struct {
	SuccessCount int            `json:"success_count"`
	ErrorCount   int            `json:"error_count"`
	Errors       []BulkRowError `json:"errors"`
}
