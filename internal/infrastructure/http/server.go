package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/highcrestlabs/academy-payments/internal/adapter/handler/http"
	"github.com/highcrestlabs/academy-payments/internal/config"
	"github.com/highcrestlabs/academy-payments/internal/domain/provider"
	"github.com/highcrestlabs/academy-payments/internal/infrastructure/database"
	"github.com/highcrestlabs/academy-payments/internal/middleware/auth"
	"github.com/highcrestlabs/academy-payments/internal/ratelimit"
	"github.com/highcrestlabs/academy-payments/internal/usecase"
)

type Server struct {
	config  *config.Config
	logger  *zap.Logger
	echo    *echo.Echo
	repos   *database.Repositories
	limiter ratelimit.Limiter
	gateway provider.Gateway
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	repos *database.Repositories,
	limiter ratelimit.Limiter,
	gateway provider.Gateway,
) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST},
	}))

	return &Server{
		config:  cfg,
		logger:  logger,
		echo:    e,
		repos:   repos,
		limiter: limiter,
		gateway: gateway,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Services
	initiation := usecase.NewInitiationService(
		s.repos.Payment, s.gateway, s.config.Service.Paystack.CallbackURL, s.logger)
	verification := usecase.NewVerificationService(s.repos.Payment, s.gateway, s.logger)
	webhooks := usecase.NewWebhookService(
		s.repos.Payment, s.repos.Webhook, s.config.Service.Paystack.SecretKey, s.logger)

	// Handlers
	paymentHandler := handlers.NewPaymentHandler(
		initiation, verification, s.limiter,
		s.config.Service.RateLimit.InitializePerMinute,
		s.config.Service.RateLimit.VerifyPerMinute,
		s.logger)
	webhookHandler := handlers.NewWebhookHandler(webhooks, s.logger)
	adminHandler := handlers.NewAdminHandler(s.repos.Payment, verification, s.logger)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Public routes
	v1.GET("/programs", paymentHandler.Programs)
	v1.POST("/payments/initialize", paymentHandler.Initialize)
	v1.GET("/payments/verify", paymentHandler.Verify)

	// Gateway callback: authenticated by signature, not JWT
	v1.POST("/payments/webhook", webhookHandler.Handle)

	// Admin routes (require JWT with admin role)
	admin := v1.Group("/admin", auth.JWTMiddleware(auth.JWTConfig{
		Secret: s.config.Service.Admin.JWTSecret,
		Logger: s.logger,
	}))
	admin.GET("/payments", adminHandler.ListPayments)
	admin.GET("/payments/stats", adminHandler.Stats)
	admin.POST("/payments/:reference/verify", adminHandler.ReverifyPayment)
}
