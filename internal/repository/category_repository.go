package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduin/eduin-backend/internal/model"
)

// CategoryRepository handles category data access. Configs are stored in a
// json (not jsonb) column so subject order survives the round trip.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List retrieves all categories ordered by type then value.
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, type, value, config::text, created_at, updated_at
		 FROM categories ORDER BY type, value`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetByTypeValue retrieves the category for an exam or class value.
func (r *CategoryRepository) GetByTypeValue(ctx context.Context, typ model.CategoryType, value string) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT id, type, value, config::text, created_at, updated_at
		 FROM categories WHERE type = $1 AND value = $2`, typ, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	cfg, err := json.Marshal(c.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO categories (type, value, config)
		 VALUES ($1, $2, $3::json)
		 RETURNING id, created_at, updated_at`,
		c.Type, c.Value, string(cfg),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// UpdateConfig replaces a category's subject/chapter config.
func (r *CategoryRepository) UpdateConfig(ctx context.Context, id int, config model.SubjectChapters) (*model.Category, error) {
	cfg, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`UPDATE categories SET config = $1::json, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2
		 RETURNING id, type, value, config::text, created_at, updated_at`,
		string(cfg), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanCategory(row pgx.Row) (model.Category, error) {
	var (
		c   model.Category
		raw string
	)
	if err := row.Scan(&c.ID, &c.Type, &c.Value, &raw, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}
	if err := json.Unmarshal([]byte(raw), &c.Config); err != nil {
		return c, fmt.Errorf("decode category %d config: %w", c.ID, err)
	}
	return c, nil
}
