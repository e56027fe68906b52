package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/models"
	"github.com/quantasec/pqscan/internal/scanner"
	"github.com/quantasec/pqscan/internal/utils"
)

// ScanController handles scan lifecycle API requests
type ScanController struct {
	orchestrator *scanner.Orchestrator
	db           database.Database
	logger       *logrus.Logger
}

// NewScanController creates a new scan controller
func NewScanController(orchestrator *scanner.Orchestrator, db database.Database, logger *logrus.Logger) *ScanController {
	return &ScanController{
		orchestrator: orchestrator,
		db:           db,
		logger:       logger,
	}
}

// List handles GET /scans with optional repository_id and status filters
func (ctrl *ScanController) List(c *gin.Context) {
	filter := repositories.ScanFilter{
		RepositoryID: c.Query("repository_id"),
		Status:       models.ScanStatus(c.Query("status")),
	}

	if filter.Status != "" && !filter.Status.Valid() {
		utils.BadRequest(c, "validation failed", "unknown scan status "+string(filter.Status))
		return
	}

	scans, err := ctrl.orchestrator.ListScans(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, scans)
}

// Get handles GET /scans/:id
func (ctrl *ScanController) Get(c *gin.Context) {
	scan, err := ctrl.orchestrator.GetScan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, scan)
}

// Create handles POST /scans
func (ctrl *ScanController) Create(c *gin.Context) {
	var req models.ScanCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "validation failed", err.Error())
		return
	}

	scan, jobID, err := ctrl.orchestrator.CreateScan(c.Request.Context(), scanner.CreateScanInput{
		RepositoryID:  req.RepositoryID,
		Branch:        req.Branch,
		IntegrationID: req.IntegrationID,
		Config:        req.ScanConfig,
	})
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.ScanCreateResponse{
		Scan:  scan,
		JobID: jobID,
	})
}

// Start handles POST /scans/:id/start
func (ctrl *ScanController) Start(c *gin.Context) {
	scan, err := ctrl.orchestrator.StartScan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, scan)
}

// Progress handles PATCH /scans/:id/progress
func (ctrl *ScanController) Progress(c *gin.Context) {
	var req models.ScanProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "validation failed", err.Error())
		return
	}

	scan, err := ctrl.orchestrator.AdvanceProgress(c.Request.Context(), c.Param("id"), *req.Progress)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, scan)
}

// Complete handles POST /scans/:id/complete
func (ctrl *ScanController) Complete(c *gin.Context) {
	var req models.ScanCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "validation failed", err.Error())
		return
	}

	findings := make([]scanner.Finding, len(req.Findings))
	for i, f := range req.Findings {
		findings[i] = scanner.Finding{
			Severity:       models.Severity(f.Severity),
			Title:          f.Title,
			Description:    f.Description,
			FilePath:       f.FilePath,
			LineNumber:     f.LineNumber,
			Algorithm:      f.Algorithm,
			Recommendation: f.Recommendation,
			VDR:            f.VDR,
		}
	}

	scan, err := ctrl.orchestrator.CompleteScan(c.Request.Context(), c.Param("id"), req.TotalFiles, findings, req.CBOM)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, scan)
}

// Fail handles POST /scans/:id/fail
func (ctrl *ScanController) Fail(c *gin.Context) {
	var req models.ScanFailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "validation failed", err.Error())
		return
	}

	scan, err := ctrl.orchestrator.FailScan(c.Request.Context(), c.Param("id"), req.ErrorMessage)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, scan)
}

// ListVulnerabilities handles GET /scans/:id/vulnerabilities
func (ctrl *ScanController) ListVulnerabilities(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	// Confirm the scan exists so an unknown ID is a 404 rather than an
	// empty list.
	if _, err := ctrl.orchestrator.GetScan(ctx, id); err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	vulnStore := repositories.NewVulnerabilityRepository(ctrl.db.DB())
	vulns, err := vulnStore.ListByScan(ctx, id)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, vulns)
}
