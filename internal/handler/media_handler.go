package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/service"
)

// MediaHandler handles media upload endpoints.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadImage godoc
// POST /api/v1/admin/upload-image
// Stores a question or option image and returns its public URL.
func (h *MediaHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	url, err := h.mediaService.SaveUpload(file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"url": url})
}
