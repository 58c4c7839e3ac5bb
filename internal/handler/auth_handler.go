package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/middleware"
	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/repository"
	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/service"
	"github.com/eduin/eduin-backend/internal/validator"
)

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// Login godoc
// POST /api/v1/admin/login
// Validates username + password and returns a JWT bound to a new session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Msg("Admin login failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// Logout godoc
// POST /api/v1/admin/logout
// Ends the session of the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.ID); err != nil {
		h.log.Error().Err(err).Int("admin_id", claims.AdminID).Msg("Logout failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/admin/me
// Returns the currently authenticated admin.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	admin, err := h.authService.Me(c.Request.Context(), claims)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin})
}
