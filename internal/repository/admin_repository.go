package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduin/eduin-backend/internal/model"
)

// AdminRepository handles admin data access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// GetByID retrieves an admin by ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByUsername retrieves an admin by their unique username.
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *AdminRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.Admin, error) {
	a := &model.Admin{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at, updated_at FROM admins `+where, arg,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admins (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		a.Username, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// UpdatePassword updates an admin's password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE admins SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
