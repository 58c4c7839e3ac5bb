package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/config"
)

const (
	metricsInterval = 7 * time.Second
	healthTimeout   = 2 * time.Second
)

// Pinger is a dependency that can report its liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports how many practice sessions are hosted.
type SessionCounter interface {
	Len() int
}

// SystemHandler serves the health probe and streams runtime metrics via SSE.
type SystemHandler struct {
	db        Pinger        // nil skips the database check
	rdb       redis.Cmdable // nil skips redis checks and queue depth
	sessions  SessionCounter
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(db Pinger, rdb redis.Cmdable, sessions SessionCounter, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		rdb:       rdb,
		sessions:  sessions,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Reports 200 when every configured dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if h.db != nil {
		checks["database"] = "ok"
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Database health check failed")
			checks["database"] = "down"
			healthy = false
		}
	}
	if h.rdb != nil {
		checks["redis"] = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			h.log.Warn().Err(err).Msg("Redis health check failed")
			checks["redis"] = "down"
			healthy = false
		}
	}

	status := http.StatusOK
	checks["status"] = "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		checks["status"] = "degraded"
	}
	c.JSON(status, checks)
}

// ---------- SSE Endpoint ----------

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	// OS
	MemUsedBytes  uint64  `json:"mem_used_bytes"`
	MemTotalBytes uint64  `json:"mem_total_bytes"`
	MemPercent    float64 `json:"mem_percent"`
	LoadAvg1      float64 `json:"load_avg_1"`
	LoadAvg5      float64 `json:"load_avg_5"`
	LoadAvg15     float64 `json:"load_avg_15"`

	// Go Application
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	HeapSys     uint64 `json:"heap_sys"`
	NumGC       uint32 `json:"num_gc"`
	AppRSSBytes uint64 `json:"app_rss_bytes"`
	GoVersion   string `json:"go_version"`
	NumCPU      int    `json:"num_cpu"`

	// Practice
	PracticeSessions int   `json:"practice_sessions"`
	QueueResults     int64 `json:"queue_results"`
}

// SystemMetricsSSE godoc
// GET /api/v1/admin/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Msg("Admin connected to system metrics SSE")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	// Send immediately on connect, then every tick
	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Admin disconnected from system metrics SSE")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	m := h.collect(c.Request.Context())
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	m := systemMetrics{
		Timestamp: time.Now().Unix(),
		Uptime:    formatDuration(time.Since(h.startTime)),
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
	}

	// ── Memory ──
	memTotal, memAvail, err := readMemInfo()
	if err == nil && memTotal > 0 {
		m.MemTotalBytes = memTotal
		m.MemUsedBytes = memTotal - memAvail
		m.MemPercent = float64(m.MemUsedBytes) / float64(memTotal) * 100
	}

	// ── Load Average ──
	m.LoadAvg1, m.LoadAvg5, m.LoadAvg15, _ = readLoadAvg()

	// ── Go Runtime ──
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.Goroutines = runtime.NumGoroutine()
	m.HeapAlloc = ms.HeapAlloc
	m.HeapSys = ms.Sys
	m.NumGC = ms.NumGC

	// ── App RSS ──
	m.AppRSSBytes, _ = readProcessRSS()

	// ── Practice ──
	if h.sessions != nil {
		m.PracticeSessions = h.sessions.Len()
	}
	if h.rdb != nil {
		m.QueueResults, _ = h.rdb.LLen(ctx, config.WorkerKey.PersistResultsQueue).Result()
	}

	return m
}

// ---------- /proc Readers ----------

// readMemInfo parses /proc/meminfo for MemTotal and MemAvailable.
func readMemInfo() (total, available uint64, err error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	found := 0
	for scanner.Scan() && found < 2 {
		line := scanner.Text()
		if strings.HasPrefix(line, "MemTotal:") {
			total = parseMemInfoValue(line)
			found++
		} else if strings.HasPrefix(line, "MemAvailable:") {
			available = parseMemInfoValue(line)
			found++
		}
	}
	return total, available, nil
}

func parseMemInfoValue(line string) uint64 {
	// Format: "MemTotal:       16384000 kB"
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	val, _ := strconv.ParseUint(fields[1], 10, 64)
	return val * 1024 // Convert kB to bytes
}

// readLoadAvg parses /proc/loadavg.
func readLoadAvg() (load1, load5, load15 float64, err error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, 0, 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("unexpected /proc/loadavg format")
	}
	load1, _ = strconv.ParseFloat(fields[0], 64)
	load5, _ = strconv.ParseFloat(fields[1], 64)
	load15, _ = strconv.ParseFloat(fields[2], 64)
	return load1, load5, load15, nil
}

// readProcessRSS reads VmRSS from /proc/self/status.
func readProcessRSS() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			return parseMemInfoValue(line), nil
		}
	}
	return 0, fmt.Errorf("VmRSS not found")
}

// ---------- Helpers ----------

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
