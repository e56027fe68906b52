package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/auth"
	"github.com/quantasec/pqscan/internal/config"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/middleware"
	"github.com/quantasec/pqscan/internal/provider"
	"github.com/quantasec/pqscan/internal/report"
	"github.com/quantasec/pqscan/internal/scanner"
)

// Server represents the API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *config.Config
	logger     *logrus.Logger
	db         database.Database
	authMW     *middleware.AuthMiddleware
	shutdownCh chan os.Signal

	// API controllers
	authController        *AuthController
	repositoryController  *RepositoryController
	scanController        *ScanController
	reportController      *ReportController
	tokenController       *ProviderTokenController
	integrationController *IntegrationController
	dashboardController   *DashboardController
}

// ServerConfig contains the configuration for the API server
type ServerConfig struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     database.Database
}

// NewServer creates a new API server with all controllers wired
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.Config == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.DB == nil {
		return nil, errors.New("database is required")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:   cfg.Config.Auth.Secret,
		TokenTTL: cfg.Config.Auth.AccessTokenTTL,
		Issuer:   cfg.Config.Auth.TokenIssuer,
		Audience: cfg.Config.Auth.TokenAudience,
	}, cfg.Logger)

	server := &Server{
		config:     cfg.Config,
		logger:     cfg.Logger,
		db:         cfg.DB,
		authMW:     middleware.NewAuthMiddleware(jwtService),
		shutdownCh: make(chan os.Signal, 1),
	}

	// Domain services
	orchestrator := scanner.NewOrchestrator(cfg.DB, cfg.Logger)
	reportService := report.NewService(cfg.DB, cfg.Logger)
	gateway := provider.NewGateway(
		cfg.DB,
		cfg.Logger,
		cfg.Config.Provider.RequestTimeout,
		cfg.Config.Provider.GitHubBaseURL,
	)
	authService := auth.NewService(
		cfg.DB,
		jwtService,
		auth.NewPasswordService(auth.DefaultPasswordConfig()),
		cfg.Logger,
	)

	// Controllers
	server.authController = NewAuthController(authService, cfg.DB, cfg.Logger)
	server.repositoryController = NewRepositoryController(cfg.DB, gateway, cfg.Logger)
	server.scanController = NewScanController(orchestrator, cfg.DB, cfg.Logger)
	server.reportController = NewReportController(reportService, cfg.Logger)
	server.tokenController = NewProviderTokenController(cfg.DB, gateway, cfg.Logger)
	server.integrationController = NewIntegrationController(cfg.DB, cfg.Logger)
	server.dashboardController = NewDashboardController(cfg.DB, cfg.Logger)

	switch cfg.Config.Server.Mode {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	registerCustomValidators()

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.NewLoggingMiddleware(cfg.Logger).Logger())
	router.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Recovery())
	router.Use(middleware.CORS())

	if len(cfg.Config.Server.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Config.Server.TrustedProxies); err != nil {
			return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
		}
	}

	server.router = router

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Config.Server.Host, cfg.Config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Config.Server.ReadTimeout,
		WriteTimeout: cfg.Config.Server.WriteTimeout,
	}

	return server, nil
}

// Start registers routes and serves until a shutdown signal arrives
func (s *Server) Start() error {
	s.RegisterRoutes()

	signal.Notify(s.shutdownCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.WithField("address", s.httpServer.Addr).Info("Starting API server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	<-s.shutdownCh
	s.logger.Info("Shutdown signal received")
	return s.Shutdown()
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Error("Error during server shutdown")
		return err
	}

	if err := s.db.Close(); err != nil {
		s.logger.WithError(err).Error("Error closing database connection")
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the Gin router instance
func (s *Server) Router() *gin.Engine {
	return s.router
}
