package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/models"
	"github.com/quantasec/pqscan/internal/utils"
)

// DashboardController serves the aggregate views behind the dashboard
// landing page.
type DashboardController struct {
	db     database.Database
	logger *logrus.Logger
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(db database.Database, logger *logrus.Logger) *DashboardController {
	return &DashboardController{
		db:     db,
		logger: logger,
	}
}

// Stats handles GET /dashboard/stats
func (ctrl *DashboardController) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	store := repositories.NewStatsRepository(ctrl.db.DB())

	repoCount, err := store.CountRepositories(ctx)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	scansByStatus, err := store.CountScansByStatus(ctx)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	vulnsBySeverity, err := store.CountVulnerabilitiesBySeverity(ctx)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	recent, err := store.RecentScans(ctx, 10)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.DashboardStats{
		Repositories:    repoCount,
		ScansByStatus:   scansByStatus,
		VulnsBySeverity: vulnsBySeverity,
		RecentScans:     recent,
	})
}

// Trends handles GET /dashboard/trends?days=
func (ctrl *DashboardController) Trends(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			utils.BadRequest(c, "validation failed", "days must be an integer between 1 and 365")
			return
		}
		days = parsed
	}

	store := repositories.NewStatsRepository(ctrl.db.DB())
	points, err := store.ScanTrend(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, points)
}
