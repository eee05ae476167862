package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/emergencyconnect/kms/internal/config"
	kmsHTTP "github.com/emergencyconnect/kms/internal/kms/http"
	kmsUseCase "github.com/emergencyconnect/kms/internal/kms/usecase"
	"github.com/emergencyconnect/kms/internal/metrics"
)

// Server is the API HTTP server exposing the token and key cache endpoints.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the API server with the full route layout:
//
//	GET  /health
//	POST /v1/tokens                     (optional per-IP rate limit)
//	GET  /v1/kms/metrics                (bearer auth, admin)
//	POST /v1/kms/revoke-user/:userId    (bearer auth, admin)
//	POST /v1/kms/revoke-role/:role      (bearer auth, admin)
func NewServer(
	cfg *config.Config,
	kmsHandler *kmsHTTP.KMSHandler,
	tokenUseCase kmsUseCase.TokenUseCase,
	metricsProvider *metrics.Provider,
	logger *slog.Logger,
) *Server {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if cfg.MetricsEnabled && metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/v1")

	tokens := v1.Group("/tokens")
	if cfg.RateLimitEnabled {
		tokens.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger))
	}
	tokens.POST("", kmsHandler.IssueTokenHandler)

	admin := v1.Group("/kms")
	admin.Use(kmsHTTP.AuthenticationMiddleware(tokenUseCase, logger))
	admin.GET("/metrics", kmsHandler.MetricsHandler)
	admin.POST("/revoke-user/:userId", kmsHandler.RevokeUserKeysHandler)
	admin.POST("/revoke-role/:role", kmsHandler.RevokeRoleKeysHandler)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
