package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/handler"
	"github.com/eduin/eduin-backend/internal/middleware"
	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Question  *handler.QuestionHandler
	Category  *handler.CategoryHandler
	Practice  *handler.PracticeHandler
	Media     *handler.MediaHandler
	WS        *handler.WSHandler
	Dashboard *handler.DashboardHandler
	Monitor   *handler.MonitorHandler // nil when redis pub/sub is unavailable
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	loginLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli())

	// Uploaded images never change once written; cache them for a year.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)

	// ─── 1. Public Question API ────────────────────────────────────────
	public := router.Group("/api/v1")
	{
		public.GET("/questions", handlers.Question.PracticeQuestions)
		public.GET("/config", handlers.Category.GetConfig)
	}

	// ─── 2. Practice Sessions (server-hosted) ──────────────────────────
	practice := router.Group("/api/v1/practice/sessions")
	practice.Use(middleware.NoStore())
	{
		practice.POST("", handlers.Practice.CreateSession)
		practice.GET("/:id", handlers.Practice.GetSession)
		practice.DELETE("/:id", handlers.Practice.DeleteSession)
		practice.POST("/:id/start", handlers.Practice.StartSession)
		practice.POST("/:id/answer", handlers.Practice.Answer)
		practice.POST("/:id/next", handlers.Practice.Next)
		practice.POST("/:id/previous", handlers.Practice.Previous)
		practice.GET("/:id/result", handlers.Practice.Result)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/practice/sessions/:id/stream", handlers.WS.PracticeStream)
	}

	// ─── 4. Admin Auth (Public, Rate Limited) ──────────────────────────
	adminAuth := router.Group("/api/v1/admin")
	{
		adminAuth.POST("/login", loginLimiter.Middleware(), handlers.Auth.Login)
	}

	// ─── 5. Admin Console (JWT + live session) ─────────────────────────
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAdmin(authService))
	{
		admin.POST("/logout", handlers.Auth.Logout)
		admin.GET("/me", handlers.Auth.Me)

		// Questions
		admin.GET("/questions", handlers.Question.ListQuestions)
		admin.POST("/questions", handlers.Question.CreateQuestion)
		admin.POST("/questions/bulk", handlers.Question.BulkCreateQuestions)
		admin.GET("/questions/export", handlers.Question.ExportQuestions)
		admin.GET("/questions/:id", handlers.Question.GetQuestion)
		admin.PUT("/questions/:id", handlers.Question.UpdateQuestion)
		admin.DELETE("/questions/:id", handlers.Question.DeleteQuestion)

		// Categories
		admin.GET("/categories", handlers.Category.ListCategories)
		admin.POST("/categories", handlers.Category.CreateCategory)
		admin.PUT("/categories/:id", handlers.Category.UpdateCategory)

		// Dashboard
		admin.GET("/stats", handlers.Dashboard.GetStats)
		admin.GET("/system/metrics", handlers.System.SystemMetricsSSE)
		if handlers.Monitor != nil {
			admin.GET("/practice/feed", handlers.Monitor.PracticeFeedSSE)
		}

		// Media
		admin.POST("/upload-image", handlers.Media.UploadImage)
	}

	return router
}
