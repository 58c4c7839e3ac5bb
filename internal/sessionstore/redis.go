package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eduin/eduin-backend/internal/config"
)

// Redis stores sessions as JSON under config.CacheKey.AdminSessionKey with a
// native key TTL.
type Redis struct {
	rdb *redis.Client
}

// NewRedis creates a Redis-backed Store.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Put(ctx context.Context, tokenID string, s Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, config.CacheKey.AdminSessionKey(tokenID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, tokenID string) (Session, error) {
	data, err := r.rdb.Get(ctx, config.CacheKey.AdminSessionKey(tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return s, nil
}

func (r *Redis) Delete(ctx context.Context, tokenID string) error {
	return r.rdb.Del(ctx, config.CacheKey.AdminSessionKey(tokenID)).Err()
}
