// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inventario/internal/domain/auth"
	"inventario/internal/domain/consolidado"
	"inventario/internal/domain/count"
	"inventario/internal/domain/proforma"
	"inventario/internal/domain/session"
	"inventario/internal/domain/verification"
	"inventario/internal/infrastructure/http/v1/handlers"
	"inventario/internal/infrastructure/http/v1/middleware"
	"inventario/internal/infrastructure/poller"
	"inventario/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	AuthService *auth.Service

	SessionCtrl *session.Controller
	Board       *count.Board
	Notifier    *poller.Notifier
	Poller      *poller.Poller

	Coordinator *count.Coordinator
	Editor      *count.Editor

	Consolidado  *consolidado.Service
	Verification *verification.Service
	Proforma     *proforma.Service

	Products handlers.ProductSource
	Health   session.Gateway

	// AllowedOrigins for the dashboard frontend.
	AllowedOrigins []string
	Version        string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Metrics())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", middleware.HeaderRequestID)
	router.Use(cors.New(corsCfg))

	// Health and metrics endpoints, no auth required
	healthHandler := handlers.NewHealthHandler(cfg.Health, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	baseHandler := handlers.NewBaseHandler()

	// API v1
	api := router.Group("/api/v1")
	{
		// Public auth endpoints
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/elevate", authHandler.Elevate)
		}

		// Everything else requires an operator token
		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.AuthService.JWT()))

		sessionHandler := handlers.NewSessionHandler(baseHandler, cfg.SessionCtrl, cfg.Board, cfg.Notifier)
		protected.GET("/state", sessionHandler.State)
		sessionGroup := protected.Group("/session")
		{
			sessionGroup.GET("", sessionHandler.Get)
			sessionGroup.POST("/join", sessionHandler.Join)
			sessionGroup.GET("/board", sessionHandler.Board)
			sessionGroup.POST("/visibility", sessionHandler.Visibility)
			sessionGroup.GET("/notifications", sessionHandler.Notifications)

			sessionGroup.POST("/assign", middleware.RequireSupervisor(), sessionHandler.Assign)
			sessionGroup.POST("/close", middleware.RequireSupervisor(), sessionHandler.Close)
		}

		countsHandler := handlers.NewCountsHandler(baseHandler, cfg.Coordinator, cfg.SessionCtrl, cfg.Products)
		countsGroup := protected.Group("/counts")
		{
			countsGroup.POST("/open", countsHandler.Open)
			countsGroup.GET("/draft", countsHandler.Draft)
			countsGroup.PUT("/draft/lines", countsHandler.SetLine)
			countsGroup.DELETE("/draft/lines/:codigo", countsHandler.RemoveLine)
			countsGroup.POST("/finalize", countsHandler.Finalize)
			countsGroup.GET("/lock", countsHandler.Lock)
			countsGroup.GET("/history", countsHandler.History)
			countsGroup.GET("/products", countsHandler.Products)
			countsGroup.POST("/import", countsHandler.Import)
			countsGroup.POST("/import/confirm", countsHandler.ImportConfirm)
		}

		comparisonHandler := handlers.NewComparisonHandler(baseHandler, cfg.Coordinator, cfg.Editor)
		comparisonGroup := protected.Group("/comparison")
		{
			comparisonGroup.GET("", comparisonHandler.Compare)
			comparisonGroup.GET("/history", comparisonHandler.History)
			comparisonGroup.POST("/edit", middleware.RequireSupervisor(), comparisonHandler.Edit)
			comparisonGroup.POST("/upload", middleware.RequireSupervisor(), comparisonHandler.Upload)
			comparisonGroup.POST("/generate", middleware.RequireSupervisor(), comparisonHandler.Generate)
		}

		consolidadoHandler := handlers.NewConsolidadoHandler(baseHandler, cfg.Consolidado, cfg.Poller)
		protected.GET("/consolidado", consolidadoHandler.Get)

		verificationHandler := handlers.NewVerificationHandler(baseHandler, cfg.Verification)
		verificationGroup := protected.Group("/verifications")
		{
			verificationGroup.POST("", verificationHandler.Register)
			verificationGroup.GET("", verificationHandler.List)
		}

		proformaHandler := handlers.NewProformaHandler(baseHandler, cfg.Proforma)
		proformaGroup := protected.Group("/proformas")
		{
			proformaGroup.POST("", proformaHandler.Register)
			proformaGroup.GET("", proformaHandler.List)
			proformaGroup.POST("/:id/emit", proformaHandler.Emit)
			proformaGroup.GET("/:id/pdf", proformaHandler.Download)
		}
	}

	return router
}
