package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stemsi/examprep-backend/internal/config"
	"github.com/stemsi/examprep-backend/internal/handler"
	"github.com/stemsi/examprep-backend/internal/middleware"
	"github.com/stemsi/examprep-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Import       *handler.ImportHandler
	Bank         *handler.BankHandler
	Exam         *handler.ExamHandler
	Distribution *handler.DistributionHandler
	Activity     *handler.ActivityHandler
	System       *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
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
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// Imports parse whole pastes, so they share a tighter budget.
	importLimiter := middleware.NewRateLimiter(cfg.ImportRateLimit, time.Minute)

	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.NoStore())
	{
		// ─── Banks ─────────────────────────────────────────────────────
		banks := admin.Group("/banks")
		{
			banks.GET("", handlers.Bank.ListScopes)
			banks.POST("/:scope/import", importLimiter.Middleware(), handlers.Import.ImportToBank)
			banks.GET("/:scope/questions", handlers.Bank.ListQuestions)
			banks.DELETE("/:scope/questions", handlers.Bank.ClearQuestions)
		}

		// ─── Exams ─────────────────────────────────────────────────────
		exams := admin.Group("/exams")
		{
			exams.POST("", handlers.Exam.CreateExam)
			exams.GET("/:exam_id/parts/:part_id/questions", handlers.Exam.ListPartQuestions)
			exams.POST("/:exam_id/parts/:part_id/import", importLimiter.Middleware(), handlers.Import.ImportToExam)
		}

		// ─── Distributions ─────────────────────────────────────────────
		admin.POST("/distributions", importLimiter.Middleware(), handlers.Distribution.Distribute)
		admin.GET("/distributions/last", handlers.Distribution.LastReport)

		admin.GET("/activity-logs", handlers.Activity.ListActivityLogs)
		admin.GET("/system/status", handlers.System.Status)
	}

	return router
}
