package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/repository"
)

// CategoryStore is the category persistence used by CategoryService.
type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
	GetByTypeValue(ctx context.Context, typ model.CategoryType, value string) (*model.Category, error)
	Create(ctx context.Context, c *model.Category) error
	UpdateConfig(ctx context.Context, id int, cfg model.SubjectChapters) (*model.Category, error)
}

// CategoryService serves subject/chapter taxonomies, read through a redis cache.
type CategoryService struct {
	store CategoryStore
	rdb   redis.Cmdable // nil disables caching
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(store CategoryStore, rdb redis.Cmdable, ttl time.Duration, log zerolog.Logger) *CategoryService {
	return &CategoryService{
		store: store,
		rdb:   rdb,
		ttl:   ttl,
		log:   log.With().Str("component", "category_service").Logger(),
	}
}

// CategoryConfig returns the subject/chapter choices for an exam or class. An
// unknown category yields an empty config rather than an error.
func (s *CategoryService) CategoryConfig(ctx context.Context, typ model.CategoryType, value string) (model.SubjectChapters, error) {
	key := config.CacheKey.CategoryConfigKey(string(typ), value)

	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var cfg model.SubjectChapters
			if err := json.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			s.log.Warn().Str("key", key).Msg("Dropping undecodable cached category config")
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("Category cache read failed")
		}
	}

	cfg := model.SubjectChapters{}
	c, err := s.store.GetByTypeValue(ctx, typ, value)
	switch {
	case err == nil:
		cfg = c.Config
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("load category: %w", err)
	}

	s.cache(ctx, key, cfg)
	return cfg, nil
}

// List returns every category.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.store.List(ctx)
}

// Create adds a category.
func (s *CategoryService) Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	c := &model.Category{Type: req.Type, Value: req.Value, Config: req.Config}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, c)
	return c, nil
}

// UpdateConfig replaces a category's config.
func (s *CategoryService) UpdateConfig(ctx context.Context, id int, cfg model.SubjectChapters) (*model.Category, error) {
	c, err := s.store.UpdateConfig(ctx, id, cfg)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, c)
	return c, nil
}

func (s *CategoryService) cache(ctx context.Context, key string, cfg model.SubjectChapters) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Category cache write failed")
	}
}

func (s *CategoryService) invalidate(ctx context.Context, c *model.Category) {
	if s.rdb == nil {
		return
	}
	key := config.CacheKey.CategoryConfigKey(string(c.Type), c.Value)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Category cache invalidation failed")
	}
}
