package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduin/eduin-backend/internal/model"
)

var resultColumns = []string{
	"attempt_id", "session_id", "selection_type", "selection", "subject", "chapter", "difficulty",
	"total", "correct", "wrong", "skipped", "accuracy", "timed_out", "completed_at",
}

// ResultRepository persists completed practice attempts.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// BulkInsert copies a batch of results in one round trip. It fails as a whole
// if any row conflicts; callers fall back to Insert.
func (r *ResultRepository) BulkInsert(ctx context.Context, results []model.PracticeResultRecord) error {
	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"practice_results"},
		resultColumns,
		pgx.CopyFromSlice(len(results), func(i int) ([]interface{}, error) {
			p := results[i]
			return []interface{}{
				p.AttemptID, p.SessionID, p.SelectionType, p.Selection, p.Subject, p.Chapter, p.Difficulty,
				p.Total, p.Correct, p.Wrong, p.Skipped, p.Accuracy, p.TimedOut, p.CompletedAt,
			}, nil
		}),
	)
	return err
}

// Insert writes one result, ignoring an attempt that was already stored.
func (r *ResultRepository) Insert(ctx context.Context, p model.PracticeResultRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO practice_results (attempt_id, session_id, selection_type, selection, subject, chapter,
			difficulty, total, correct, wrong, skipped, accuracy, timed_out, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (attempt_id) DO NOTHING`,
		p.AttemptID, p.SessionID, p.SelectionType, p.Selection, p.Subject, p.Chapter, p.Difficulty,
		p.Total, p.Correct, p.Wrong, p.Skipped, p.Accuracy, p.TimedOut, p.CompletedAt,
	)
	return err
}
