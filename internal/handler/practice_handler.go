package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/practice"
	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/service"
	"github.com/eduin/eduin-backend/internal/validator"
)

// answerRequest is the payload for answering the current question.
type answerRequest struct {
	Option string `json:"option" binding:"required,option"`
}

// PracticeHandler exposes server-hosted practice sessions over REST.
type PracticeHandler struct {
	practiceService *service.PracticeService
	log             zerolog.Logger
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(practiceService *service.PracticeService, log zerolog.Logger) *PracticeHandler {
	return &PracticeHandler{
		practiceService: practiceService,
		log:             log.With().Str("component", "practice_handler").Logger(),
	}
}

// CreateSession godoc
// POST /api/v1/practice/sessions
// Creates a session and loads its questions. A failed load still creates the
// session; its state carries the load error and it can be retried via start.
func (h *PracticeHandler) CreateSession(c *gin.Context) {
	var cfg practice.Config
	if fields := validator.Bind(c, &cfg); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	id, state, err := h.practiceService.Create(c.Request.Context(), cfg)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"id": id, "state": state})
}

// GetSession godoc
// GET /api/v1/practice/sessions/:id
func (h *PracticeHandler) GetSession(c *gin.Context) {
	state, err := h.practiceService.State(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// StartSession godoc
// POST /api/v1/practice/sessions/:id/start
// Reloads the session with its original config, discarding any progress.
func (h *PracticeHandler) StartSession(c *gin.Context) {
	state, err := h.practiceService.Restart(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// Answer godoc
// POST /api/v1/practice/sessions/:id/answer
func (h *PracticeHandler) Answer(c *gin.Context) {
	var req answerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	correct, state, err := h.practiceService.Answer(c.Param("id"), req.Option)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"correct": correct, "state": state})
}

// Next godoc
// POST /api/v1/practice/sessions/:id/next
func (h *PracticeHandler) Next(c *gin.Context) {
	state, err := h.practiceService.Next(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// Previous godoc
// POST /api/v1/practice/sessions/:id/previous
func (h *PracticeHandler) Previous(c *gin.Context) {
	state, err := h.practiceService.Previous(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// Result godoc
// GET /api/v1/practice/sessions/:id/result
func (h *PracticeHandler) Result(c *gin.Context) {
	res, err := h.practiceService.Result(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": res})
}

// DeleteSession godoc
// DELETE /api/v1/practice/sessions/:id
func (h *PracticeHandler) DeleteSession(c *gin.Context) {
	if err := h.practiceService.Dispose(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

func (h *PracticeHandler) fail(c *gin.Context, err error) {
	status, code := practiceFailure(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("session_id", c.Param("id")).Msg("Practice request failed")
		response.Fail(c, status, code)
		return
	}
	// Config errors carry the offending bound in their text.
	if errors.Is(err, practice.ErrInvalidConfig) {
		response.FailWithMessage(c, status, code, err.Error())
		return
	}
	response.Fail(c, status, code)
}
