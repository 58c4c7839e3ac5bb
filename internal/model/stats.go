package model

import "time"

// LabelCount is one bucket of a grouped count.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PracticeSummary aggregates persisted practice results.
type PracticeSummary struct {
	Attempts        int     `json:"attempts"`
	AverageAccuracy float64 `json:"average_accuracy"`
	TimedOut        int     `json:"timed_out"`
}

// QuestionStats is the admin dashboard payload.
type QuestionStats struct {
	Total        int             `json:"total"`
	ByExam       []LabelCount    `json:"by_exam"`
	ByDifficulty []LabelCount    `json:"by_difficulty"`
	BySubject    []LabelCount    `json:"by_subject"`
	Practice     PracticeSummary `json:"practice"`
}

// PracticeResultRecord is a completed practice attempt as persisted. A session
// restarted after completion yields one record per attempt.
type PracticeResultRecord struct {
	AttemptID     string    `json:"attempt_id"`
	SessionID     string    `json:"session_id"`
	SelectionType string    `json:"selection_type"`
	Selection     string    `json:"selection"`
	Subject       string    `json:"subject"`
	Chapter       string    `json:"chapter"`
	Difficulty    string    `json:"difficulty"`
	Total         int       `json:"total"`
	Correct       int       `json:"correct"`
	Wrong         int       `json:"wrong"`
	Skipped       int       `json:"skipped"`
	Accuracy      int       `json:"accuracy"`
	TimedOut      bool      `json:"timed_out"`
	CompletedAt   time.Time `json:"completed_at"`
}
