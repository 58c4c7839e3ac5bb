package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/eduin/eduin-backend/internal/config"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed image MIME types.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// MediaService stores question and option images on local disk.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveUpload saves an uploaded image under a UUID filename and returns its
// public path. The type is sniffed from content, not the client header.
func (s *MediaService) SaveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}
	return s.Save(file)
}

// Save validates and writes an image read from r.
func (s *MediaService) Save(r io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	destPath := filepath.Join(s.cfg.UploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// One byte past the limit is enough to know the body is too big.
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), r), s.cfg.MaxUploadBytes+1)
	written, err := io.Copy(dst, body)
	if err != nil {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if written > s.cfg.MaxUploadBytes {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("%w: max %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes)
	}

	return "/uploads/" + filename, nil
}
