package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/database"
	"github.com/eduin/eduin-backend/internal/handler"
	"github.com/eduin/eduin-backend/internal/logger"
	"github.com/eduin/eduin-backend/internal/middleware"
	"github.com/eduin/eduin-backend/internal/repository"
	"github.com/eduin/eduin-backend/internal/router"
	"github.com/eduin/eduin-backend/internal/service"
	"github.com/eduin/eduin-backend/internal/sessionstore"
	"github.com/eduin/eduin-backend/internal/validator"
	"github.com/eduin/eduin-backend/internal/worker"
)

const sweepInterval = time.Minute

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("session_store", cfg.SessionStore).
		Msg("Starting Eduin Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, adminRepo, newSessionStore(cfg, rdb, log), log)
	questionService := service.NewQuestionService(questionRepo, log)
	exportService := service.NewExportService(questionRepo, log)
	categoryService := service.NewCategoryService(categoryRepo, rdb, cfg.CategoryCacheTTL, log)
	statsService := service.NewStatsService(statsRepo, rdb, log)
	mediaService := service.NewMediaService(cfg)
	practiceService := service.NewPracticeService(cfg, questionService, service.NewRedisResultQueue(rdb), log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, log),
		Question:  handler.NewQuestionHandler(questionService, exportService, log),
		Category:  handler.NewCategoryHandler(categoryService, log),
		Practice:  handler.NewPracticeHandler(practiceService, log),
		Media:     handler.NewMediaHandler(mediaService),
		WS:        handler.NewWSHandler(practiceService, log, cfg.AllowedOrigins),
		Dashboard: handler.NewDashboardHandler(statsService),
		Monitor:   handler.NewMonitorHandler(rdb, practiceService, log),
		System:    handler.NewSystemHandler(pool, rdb, practiceService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	resultWorker := worker.NewResultWorker(resultRepo, rdb, log)

	workers.Add(3)
	go func() {
		defer workers.Done()
		resultWorker.Start(workerCtx)
	}()
	go func() {
		defer workers.Done()
		practiceService.RunSweeper(workerCtx, sweepInterval)
	}()
	go func() {
		defer workers.Done()
		loginLimiter.Run(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, loginLimiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	// Request contexts derive from baseCtx so SSE streams end on shutdown.
	baseCtx, baseCancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests and end open streams (5s timeout).
	baseCancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Dispose hosted practice sessions; this closes their websocket streams.
	log.Info().Int("sessions", practiceService.Len()).Msg("Disposing practice sessions")
	practiceService.Shutdown()

	// 3. Stop background workers and wait for the result queue to flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// newSessionStore picks the admin session backend.
func newSessionStore(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) sessionstore.Store {
	if cfg.SessionStore == "memory" {
		log.Warn().Msg("Admin sessions are kept in memory and will not survive a restart")
		return sessionstore.NewMemory()
	}
	return sessionstore.NewRedis(rdb)
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
