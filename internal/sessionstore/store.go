// Package sessionstore keeps admin login sessions keyed by token id. A token is
// only accepted while its session exists, so logout and expiry take effect
// before the JWT itself expires.
package sessionstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no live session exists for a token id.
var ErrNotFound = errors.New("session not found")

// Session is what the store remembers about a logged-in admin.
type Session struct {
	AdminID   int       `json:"admin_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists admin sessions with a time-to-live.
type Store interface {
	Put(ctx context.Context, tokenID string, s Session, ttl time.Duration) error
	Get(ctx context.Context, tokenID string) (Session, error)
	Delete(ctx context.Context, tokenID string) error
}
