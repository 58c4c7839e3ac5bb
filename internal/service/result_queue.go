package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/model"
)

// RedisResultQueue pushes completed results onto the queue drained by
// worker.ResultWorker and announces them to live admin feeds.
type RedisResultQueue struct {
	rdb redis.Cmdable
}

// NewRedisResultQueue creates a new RedisResultQueue.
func NewRedisResultQueue(rdb redis.Cmdable) *RedisResultQueue {
	return &RedisResultQueue{rdb: rdb}
}

// Publish enqueues rec and broadcasts it in one round trip.
func (q *RedisResultQueue) Publish(ctx context.Context, rec model.PracticeResultRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = q.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
		pipe.Publish(ctx, config.CacheKey.PracticeResultsChannel(), raw)
		return nil
	})
	return err
}
