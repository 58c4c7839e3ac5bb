package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/repository"
	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/service"
	"github.com/eduin/eduin-backend/internal/validator"
)

// CategoryHandler handles the subject/chapter taxonomy endpoints.
type CategoryHandler struct {
	categoryService *service.CategoryService
	log             zerolog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService *service.CategoryService, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		log:             log.With().Str("component", "category_handler").Logger(),
	}
}

// GetConfig godoc
// GET /api/v1/config?type=exam&value=JEE
// Returns the subjects and chapters available for an exam or class.
func (h *CategoryHandler) GetConfig(c *gin.Context) {
	var q model.CategoryQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cfg, err := h.categoryService.CategoryConfig(c.Request.Context(), q.Type, q.Value)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(q.Type)).Str("value", q.Value).Msg("Load category config failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"config": cfg})
}

// ListCategories godoc
// GET /api/v1/admin/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}

	response.Success(c, http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory godoc
// POST /api/v1/admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req model.CreateCategoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		h.log.Error().Err(err).Msg("Create category failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory godoc
// PUT /api/v1/admin/categories/:id
// Replaces the subject/chapter config of a category.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCategoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	category, err := h.categoryService.UpdateConfig(c.Request.Context(), int(id), req.Config)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Int64("category_id", id).Msg("Update category failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"category": category})
}
