package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/adelante-org/impact-api/internal/config"
	"github.com/adelante-org/impact-api/internal/handlers"
	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/metrics"
	"github.com/adelante-org/impact-api/internal/middleware/auth"
	"github.com/adelante-org/impact-api/internal/middleware/requestlog"
	"github.com/adelante-org/impact-api/internal/services"
	"github.com/adelante-org/impact-api/internal/storage/postgres"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	db         *gorm.DB
}

// New creates a new server instance
func New(cfg *config.Config, db *gorm.DB) *Server {
	return &Server{
		config: cfg,
		db:     db,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	router, err := s.setupRouter()
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() (*gin.Engine, error) {
	gin.SetMode(s.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestlog.New())
	router.Use(metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	if s.config.CORS.AllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(s.config.CORS.AllowOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = strings.Split(s.config.CORS.AllowMethods, ",")
	corsConfig.AllowHeaders = strings.Split(s.config.CORS.AllowHeaders, ",")
	router.Use(cors.New(corsConfig))

	tokens, err := auth.NewTokenManager(s.config.Auth.JWTSecret, s.config.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure token manager: %w", err)
	}

	// Repositories
	dashboardRepo := postgres.NewPostgresDashboardRepository(s.db)
	donationRepo := postgres.NewPostgresDonationRepository(s.db)
	eventRepo := postgres.NewPostgresEventRepository(s.db)
	userRepo := postgres.NewPostgresUserRepository(s.db)

	// Services
	dashboardService := services.NewDashboardService(
		dashboardRepo,
		s.config.Dashboard.TrailingMonths,
		s.config.Dashboard.TopCities,
	)

	// Handlers
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	donationHandler := handlers.NewDonationHandler(donationRepo)
	eventHandler := handlers.NewEventHandler(eventRepo)
	authHandler := handlers.NewAuthHandler(userRepo, tokens)

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		if err := postgres.HealthCheck(s.db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Impact API is running",
			"status":  "healthy",
		})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", metrics.Handler())

	s.setupAPIRoutes(router, tokens, dashboardHandler, donationHandler, eventHandler, authHandler)

	return router, nil
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(
	router *gin.Engine,
	tokens *auth.TokenManager,
	dashboardHandler *handlers.DashboardHandler,
	donationHandler *handlers.DonationHandler,
	eventHandler *handlers.EventHandler,
	authHandler *handlers.AuthHandler,
) {
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/donate", donationHandler.Donate)

		events := api.Group("/events")
		{
			events.GET("/upcoming", eventHandler.GetUpcoming)
		}
	}

	// The admin surface requires a manager account
	admin := router.Group("/admin")
	admin.Use(auth.Middleware(tokens), auth.RequireManager())
	{
		admin.GET("/dashboard", dashboardHandler.GetDashboard)
		admin.GET("/donations/insights", donationHandler.GetInsights)
	}
}
