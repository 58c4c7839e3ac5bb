package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/config"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
)

// MonitorHandler streams completed practice attempts to the admin console.
type MonitorHandler struct {
	rdb      redis.UniversalClient
	sessions SessionCounter
	log      zerolog.Logger
}

func NewMonitorHandler(rdb redis.UniversalClient, sessions SessionCounter, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:      rdb,
		sessions: sessions,
		log:      log.With().Str("component", "monitor_handler").Logger(),
	}
}

// PracticeFeedSSE godoc
// GET /api/v1/admin/practice/feed
// Sends a snapshot of hosted sessions, then every completed attempt as it
// happens, with periodic session-count refreshes.
func (h *MonitorHandler) PracticeFeedSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("message", gin.H{"type": "snapshot", "practice_sessions": h.sessions.Len()})
	c.Writer.Flush()

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.PracticeResultsChannel())
	defer pubsub.Close()
	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	h.log.Info().Msg("Admin attached to practice feed SSE")

	// Pre-allocate a reusable ping payload (never changes)
	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	lastCount := -1
	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Admin disconnected from practice feed SSE")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// The record is already JSON; wrap it without decoding.
			c.SSEvent("message", gin.H{"type": "result", "data": json.RawMessage(msg.Payload)})
			c.Writer.Flush()

		case <-refreshTicker.C:
			n := h.sessions.Len()
			if n == lastCount {
				continue
			}
			lastCount = n
			c.SSEvent("message", gin.H{"type": "refresh", "practice_sessions": n})
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}
