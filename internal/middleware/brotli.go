package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

type BrotliConfig struct {
	Quality   int
	Skipper   func(c *gin.Context) bool
	MinLength int
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
	Skipper:   nil,
}

// Content types that are already compressed.
var incompressibleTypes = []string{
	"image/",
	"application/zip",
	"application/vnd.openxmlformats-officedocument",
}

// brotliWriter buffers until MinLength bytes are seen, then decides once
// whether the body is compressed or passed through.
type brotliWriter struct {
	gin.ResponseWriter
	quality   int
	minLength int
	buf       []byte
	decided   bool
	writer    *brotli.Writer // nil when passing through
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.decided {
		return bw.emit(data)
	}

	bw.buf = append(bw.buf, data...)
	if len(bw.buf) < bw.minLength {
		return len(data), nil
	}

	bw.decide(true)
	if _, err := bw.emit(bw.buf); err != nil {
		return 0, err
	}
	bw.buf = nil
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// Flush is called by streaming endpoints; a pending small body goes out as is.
func (bw *brotliWriter) Flush() {
	if !bw.decided {
		bw.decide(false)
		_, _ = bw.emit(bw.buf)
		bw.buf = nil
	}
	if bw.writer != nil {
		_ = bw.writer.Flush()
	}
	bw.ResponseWriter.Flush()
}

func (bw *brotliWriter) decide(large bool) {
	bw.decided = true
	if !large || !compressible(bw.ResponseWriter.Header().Get("Content-Type")) {
		return
	}
	h := bw.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	bw.writer = brotli.NewWriterLevel(bw.ResponseWriter, bw.quality)
}

func (bw *brotliWriter) emit(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if bw.writer != nil {
		return bw.writer.Write(p)
	}
	return bw.ResponseWriter.Write(p)
}

func (bw *brotliWriter) finish() error {
	if !bw.decided {
		bw.decide(false)
		_, err := bw.emit(bw.buf)
		bw.buf = nil
		return err
	}
	if bw.writer != nil {
		return bw.writer.Close()
	}
	return nil
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if shouldSkip(c) {
			c.Next()
			return
		}
		if cfg.Skipper != nil && cfg.Skipper(c) {
			c.Next()
			return
		}
		if !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		c.Writer = bw
		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

// shouldSkip returns true for protocols that are incompatible with
// buffered compression and must be passed through untouched.
func shouldSkip(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	// The websocket handshake fails if the response is wrapped.
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return true
	}
	return false
}

func compressible(contentType string) bool {
	for _, prefix := range incompressibleTypes {
		if strings.HasPrefix(contentType, prefix) {
			return false
		}
	}
	return true
}

func acceptsBrotli(r *http.Request) bool {
	ae := r.Header.Get("Accept-Encoding")
	for _, enc := range strings.Split(ae, ",") {
		enc = strings.TrimSpace(strings.ToLower(enc))
		if enc == "br" || strings.HasPrefix(enc, "br;") {
			return true
		}
	}
	return false
}
