package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/repository"
	"github.com/eduin/eduin-backend/internal/sessionstore"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalidated = errors.New("session invalidated")
)

// Claims extends JWT standard claims with the admin identity.
type Claims struct {
	jwt.RegisteredClaims
	AdminID  int    `json:"admin_id"`
	Username string `json:"username"`
}

// AdminFinder looks up admin accounts.
type AdminFinder interface {
	GetByID(ctx context.Context, id int) (*model.Admin, error)
	GetByUsername(ctx context.Context, username string) (*model.Admin, error)
}

// AuthService handles admin authentication, JWT, and session management.
type AuthService struct {
	cfg      *config.Config
	admins   AdminFinder
	sessions sessionstore.Store
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, admins AdminFinder, sessions sessionstore.Store, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		admins:   admins,
		sessions: sessions,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login verifies credentials, issues a token and registers its session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.AdminLoginResponse, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if err := s.CheckPassword(admin.PasswordHash, password); err != nil {
		s.log.Warn().Str("username", username).Msg("Failed admin login")
		return nil, err
	}

	token, err := s.GenerateToken(ctx, admin)
	if err != nil {
		return nil, err
	}
	return &model.AdminLoginResponse{Token: token, Admin: *admin}, nil
}

// GenerateToken creates a JWT for an admin and stores its session.
func (s *AuthService) GenerateToken(ctx context.Context, admin *model.Admin) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(admin.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		AdminID:  admin.ID,
		Username: admin.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	sess := sessionstore.Session{AdminID: admin.ID, Username: admin.Username, CreatedAt: now.UTC()}
	if err := s.sessions.Put(ctx, jti, sess, s.cfg.JWTExpiry); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Authenticate validates a token and checks that its session is still live.
func (s *AuthService) Authenticate(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.Get(ctx, claims.ID); err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return nil, ErrSessionInvalidated
		}
		return nil, fmt.Errorf("check session: %w", err)
	}
	return claims, nil
}

// Logout ends the session bound to the token id.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	return s.sessions.Delete(ctx, tokenID)
}

// Me returns the admin owning the claims.
func (s *AuthService) Me(ctx context.Context, claims *Claims) (*model.Admin, error) {
	return s.admins.GetByID(ctx, claims.AdminID)
}
