package service

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eduin/eduin-backend/internal/config"
)

// Smallest valid GIF header plus padding.
var gifBytes = append([]byte("GIF89a\x01\x00\x01\x00\x80\x00\x00"), make([]byte, 32)...)

func TestMediaSave(t *testing.T) {
	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadBytes: 1024})

	path, err := svc.Save(bytes.NewReader(gifBytes))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(path, "/uploads/") || !strings.HasSuffix(path, ".gif") {
		t.Fatalf("path = %q", path)
	}
	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(path, "/uploads/")))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, gifBytes) {
		t.Fatal("stored file differs from upload")
	}
}

func TestMediaRejects(t *testing.T) {
	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadBytes: 64})

	if _, err := svc.Save(strings.NewReader("plain text, not an image")); !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("text err = %v", err)
	}

	big := append(append([]byte{}, gifBytes...), make([]byte, 100)...)
	if _, err := svc.Save(bytes.NewReader(big)); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("oversize err = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("rejected uploads left %d files behind", len(entries))
	}
}
