package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/repository"
	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/service"
	"github.com/eduin/eduin-backend/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// QuestionHandler handles public question fetches and question management.
type QuestionHandler struct {
	questionService *service.QuestionService
	exportService   *service.ExportService
	log             zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService, exportService *service.ExportService, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		exportService:   exportService,
		log:             log.With().Str("component", "question_handler").Logger(),
	}
}

// PracticeQuestions godoc
// GET /api/v1/questions
// Returns a random question set for the given filters.
func (h *QuestionHandler) PracticeQuestions(c *gin.Context) {
	var filter model.QuestionFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.questionService.FetchQuestions(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Fetch practice questions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ListQuestions godoc
// GET /api/v1/admin/questions
// Lists questions page by page with optional filters.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	var filter model.AdminQuestionFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, total, err := h.questionService.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("List questions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	page, perPage, _ := filter.Paging()
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions},
		response.NewPagination(page, perPage, total))
}

// GetQuestion godoc
// GET /api/v1/admin/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	q, err := h.questionService.Get(c.Request.Context(), id)
	if err != nil {
		h.failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// CreateQuestion godoc
// POST /api/v1/admin/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Create(c.Request.Context(), &req)
	if err != nil {
		h.failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question deleted"})
}

// BulkCreateQuestions godoc
// POST /api/v1/admin/questions/bulk
// Inserts many questions; rows that fail validation or insertion are reported
// without aborting the rest.
func (h *QuestionHandler) BulkCreateQuestions(c *gin.Context) {
	var req model.BulkQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	res := h.questionService.BulkCreate(c.Request.Context(), req.Questions)
	status := http.StatusCreated
	if res.SuccessCount == 0 {
		status = http.StatusBadRequest
	}
	response.Success(c, status, res)
}

// ExportQuestions godoc
// GET /api/v1/admin/questions/export
// Downloads the filtered question bank as an XLSX workbook.
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	var filter model.AdminQuestionFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var buf bytes.Buffer
	if _, err := h.exportService.WriteQuestionsXLSX(c.Request.Context(), filter, &buf); err != nil {
		h.log.Error().Err(err).Msg("Export questions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	filename := fmt.Sprintf("questions-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *QuestionHandler) failQuestion(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		h.log.Error().Err(err).Msg("Question operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
