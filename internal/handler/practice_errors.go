package handler

import (
	"errors"
	"net/http"

	"github.com/eduin/eduin-backend/internal/practice"
	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/service"
)

// practiceFailure maps practice and registry errors to an HTTP status and code.
// Specific transition errors are checked before the ErrInvalidTransition family.
func practiceFailure(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrPracticeNotFound), errors.Is(err, practice.ErrDisposed):
		return http.StatusNotFound, response.ErrSessionNotFound
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusServiceUnavailable, response.ErrTooManySessions
	case errors.Is(err, practice.ErrInvalidConfig):
		return http.StatusBadRequest, response.ErrInvalidConfig
	case errors.Is(err, practice.ErrInvalidOption):
		return http.StatusBadRequest, response.ErrInvalidOption
	case errors.Is(err, practice.ErrFetchFailed):
		return http.StatusBadGateway, response.ErrFetchFailed
	case errors.Is(err, practice.ErrAlreadyAnswered):
		return http.StatusConflict, response.ErrAlreadyAnswered
	case errors.Is(err, practice.ErrAtFirstQuestion):
		return http.StatusConflict, response.ErrAtFirstQuestion
	case errors.Is(err, practice.ErrNotCompleted):
		return http.StatusConflict, response.ErrSessionNotCompleted
	case errors.Is(err, practice.ErrNotInProgress):
		return http.StatusConflict, response.ErrNotInProgress
	case errors.Is(err, practice.ErrInvalidTransition), errors.Is(err, practice.ErrSuperseded):
		return http.StatusConflict, response.ErrInvalidTransition
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}
