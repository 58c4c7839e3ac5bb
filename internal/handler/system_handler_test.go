package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type fixedCount int

func (n fixedCount) Len() int { return int(n) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
		want   string
	}{
		{"no dependencies", nil, http.StatusOK, "ok"},
		{"database up", pingerFunc(func(context.Context) error { return nil }), http.StatusOK, "ok"},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("refused") }), http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler(tt.db, nil, fixedCount(0), zerolog.Nop())
			r := gin.New()
			r.GET("/health", h.Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["status"] != tt.want {
				t.Fatalf("body = %v", body)
			}
		})
	}
}

func TestCollectMetrics(t *testing.T) {
	h := NewSystemHandler(nil, nil, fixedCount(4), zerolog.Nop())
	m := h.collect(context.Background())
	if m.PracticeSessions != 4 || m.Goroutines == 0 || m.GoVersion == "" {
		t.Fatalf("metrics = %+v", m)
	}
}
