package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/model"
)

// statsCacheTTL keeps the dashboard from rescanning questions on every refresh.
const statsCacheTTL = 30 * time.Second

// StatsStore computes dashboard aggregates.
type StatsStore interface {
	QuestionStats(ctx context.Context) (*model.QuestionStats, error)
}

// StatsService serves the admin dashboard numbers.
type StatsService struct {
	store StatsStore
	rdb   redis.Cmdable // nil disables caching
	log   zerolog.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(store StatsStore, rdb redis.Cmdable, log zerolog.Logger) *StatsService {
	return &StatsService{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "stats_service").Logger(),
	}
}

// QuestionStats returns the dashboard stats, cached briefly in redis.
func (s *StatsService) QuestionStats(ctx context.Context) (*model.QuestionStats, error) {
	key := config.CacheKey.QuestionStatsKey()
	if s.rdb != nil {
		if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var stats model.QuestionStats
			if json.Unmarshal(data, &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.store.QuestionStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, key, data, statsCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("Stats cache write failed")
			}
		}
	}
	return stats, nil
}
