package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quantasec/pqscan/internal/utils"
)

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes() {
	router := s.router
	authMW := s.authMW

	apiV1 := router.Group("/api/v1")

	// Health check, no auth required
	apiV1.GET("/health", s.healthCheck)
	apiV1.HEAD("/health", s.healthCheck)

	// Authentication routes, rate limited since they face credential guessing
	loginLimiter := utils.NewRateLimiter(5, 10)
	authGroup := apiV1.Group("/auth", utils.RateLimitMiddleware(loginLimiter))
	{
		authGroup.POST("/login", s.authController.Login)
		authGroup.POST("/register", s.authController.Register)
	}

	user := apiV1.Group("/user", authMW.RequireAuthentication())
	{
		user.GET("/me", s.authController.GetCurrentUser)
	}

	repositories := apiV1.Group("/repositories", authMW.RequireAuthentication())
	{
		repositories.GET("", s.repositoryController.List)
		repositories.POST("", s.repositoryController.Create)

		// Registered before /:id so "temp" is never swallowed as an ID
		repositories.GET("/temp/branches", s.repositoryController.ListBranches)

		repositories.GET("/:id", s.repositoryController.Get)
		repositories.PATCH("/:id", s.repositoryController.Update)
		repositories.DELETE("/:id", s.repositoryController.Delete)
		repositories.GET("/:id/vulnerabilities", s.repositoryController.ListVulnerabilities)
	}

	scans := apiV1.Group("/scans", authMW.RequireAuthentication())
	{
		scans.GET("", s.scanController.List)
		scans.POST("", s.scanController.Create)
		scans.GET("/:id", s.scanController.Get)
		scans.POST("/:id/start", s.scanController.Start)
		scans.PATCH("/:id/progress", s.scanController.Progress)
		scans.POST("/:id/complete", s.scanController.Complete)
		scans.POST("/:id/fail", s.scanController.Fail)
		scans.GET("/:id/vulnerabilities", s.scanController.ListVulnerabilities)
	}

	reports := apiV1.Group("", authMW.RequireAuthentication())
	{
		reports.GET("/cbom-reports/:scanId", s.reportController.DownloadCBOM)
		reports.GET("/cbom-reports/:scanId/:format", s.reportController.DownloadCBOM)
		reports.GET("/vdr-reports/:id", s.reportController.DownloadVDR)
		reports.GET("/vdr-reports/:id/:format", s.reportController.DownloadVDR)
	}

	tokens := apiV1.Group("/settings/provider-tokens", authMW.RequireAuthentication())
	{
		tokens.GET("", s.tokenController.List)
		tokens.POST("", s.tokenController.Create)
		tokens.POST("/:id/test", s.tokenController.Test)
		tokens.DELETE("/:id", s.tokenController.Delete)
	}

	integrations := apiV1.Group("/integrations", authMW.RequireAuthentication())
	{
		integrations.GET("", s.integrationController.List)
		integrations.POST("", s.integrationController.Create)
		integrations.GET("/:id", s.integrationController.Get)
	}

	dashboard := apiV1.Group("/dashboard", authMW.RequireAuthentication())
	{
		dashboard.GET("/stats", s.dashboardController.Stats)
		dashboard.GET("/trends", s.dashboardController.Trends)
	}

	router.NoRoute(s.handleNotFound)
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.Ping(); err != nil {
		s.logger.WithError(err).Error("Health check database ping failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":  status,
		"time":    time.Now().UTC(),
		"version": s.config.Version,
	})
}

// handleNotFound handles requests to unregistered routes
func (s *Server) handleNotFound(c *gin.Context) {
	utils.NotFound(c, "route not found")
}
