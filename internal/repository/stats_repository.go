package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduin/eduin-backend/internal/model"
)

// StatsRepository handles admin dashboard aggregates.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// QuestionStats gathers question counts and the practice summary.
func (r *StatsRepository) QuestionStats(ctx context.Context) (*model.QuestionStats, error) {
	stats := &model.QuestionStats{}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&stats.Total); err != nil {
		return nil, err
	}

	var err error
	if stats.ByExam, err = r.groupCount(ctx,
		`SELECT COALESCE(exam, ''), COUNT(*) FROM questions GROUP BY exam ORDER BY COUNT(*) DESC`); err != nil {
		return nil, err
	}
	if stats.ByDifficulty, err = r.groupCount(ctx,
		`SELECT COALESCE(difficulty, ''), COUNT(*) FROM questions GROUP BY difficulty ORDER BY COUNT(*) DESC`); err != nil {
		return nil, err
	}
	if stats.BySubject, err = r.groupCount(ctx,
		`SELECT COALESCE(subject, ''), COUNT(*) FROM questions GROUP BY subject ORDER BY COUNT(*) DESC LIMIT 10`); err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(accuracy), 0)::float8, COUNT(*) FILTER (WHERE timed_out)
		 FROM practice_results`,
	).Scan(&stats.Practice.Attempts, &stats.Practice.AverageAccuracy, &stats.Practice.TimedOut)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *StatsRepository) groupCount(ctx context.Context, query string) ([]model.LabelCount, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]model.LabelCount, 0)
	for rows.Next() {
		var lc model.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, lc)
	}
	return counts, rows.Err()
}
