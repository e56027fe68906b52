package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/models"
	"github.com/quantasec/pqscan/internal/provider"
	"github.com/quantasec/pqscan/internal/utils"
	"gorm.io/datatypes"
)

// RepositoryController handles repository-related API requests
type RepositoryController struct {
	db      database.Database
	gateway *provider.Gateway
	logger  *logrus.Logger
}

// NewRepositoryController creates a new repository controller
func NewRepositoryController(db database.Database, gateway *provider.Gateway, logger *logrus.Logger) *RepositoryController {
	return &RepositoryController{
		db:      db,
		gateway: gateway,
		logger:  logger,
	}
}

// List handles GET /repositories
func (ctrl *RepositoryController) List(c *gin.Context) {
	store := repositories.NewRepositoryRepository(ctrl.db.DB())

	repos, err := store.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

// Get handles GET /repositories/:id
func (ctrl *RepositoryController) Get(c *gin.Context) {
	store := repositories.NewRepositoryRepository(ctrl.db.DB())

	repo, err := store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, repo)
}

// Create handles POST /repositories
func (ctrl *RepositoryController) Create(c *gin.Context) {
	var req models.RepositoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "validation failed", err.Error())
		return
	}

	repo := &models.Repository{
		Name:        req.Name,
		URL:         req.URL,
		Provider:    models.RepositoryProvider(req.Provider),
		Description: req.Description,
		Languages:   datatypes.NewJSONSlice(req.Languages),
	}

	store := repositories.NewRepositoryRepository(ctrl.db.DB())
	if err := store.Create(c.Request.Context(), repo); err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	ctrl.logger.WithFields(logrus.Fields{
		"repository_id": repo.ID,
		"name":          repo.Name,
	}).Info("Repository registered")

	c.JSON(http.StatusCreated, repo)
}

// Update handles PATCH /repositories/:id. Only fields present in the body
// are changed.
func (ctrl *RepositoryController) Update(c *gin.Context) {
	var req models.RepositoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "validation failed", err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Provider != nil {
		updates["provider"] = *req.Provider
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Languages != nil {
		updates["languages"] = datatypes.NewJSONSlice(*req.Languages)
	}

	if len(updates) == 0 {
		utils.BadRequest(c, "validation failed", "no fields to update")
		return
	}

	store := repositories.NewRepositoryRepository(ctrl.db.DB())
	repo, err := store.Update(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, repo)
}

// Delete handles DELETE /repositories/:id. The delete cascades over every
// scan, finding and report belonging to the repository in one transaction.
func (ctrl *RepositoryController) Delete(c *gin.Context) {
	store := repositories.NewRepositoryRepository(ctrl.db.DB())

	id, err := store.DeleteCascade(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	ctrl.logger.WithField("repository_id", id).Info("Repository deleted")

	c.JSON(http.StatusOK, models.RepositoryDeleteResponse{ID: id})
}

// ListVulnerabilities handles GET /repositories/:id/vulnerabilities
func (ctrl *RepositoryController) ListVulnerabilities(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	repoStore := repositories.NewRepositoryRepository(ctrl.db.DB())
	exists, err := repoStore.Exists(ctx, id)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}
	if !exists {
		utils.NotFound(c, "repository not found")
		return
	}

	vulnStore := repositories.NewVulnerabilityRepository(ctrl.db.DB())
	vulns, err := vulnStore.ListByRepository(ctx, id)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, vulns)
}

// ListBranches handles GET /repositories/temp/branches?url=. Used by the UI
// before a repository is registered, so the target is a raw clone URL rather
// than a stored record.
func (ctrl *RepositoryController) ListBranches(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		utils.BadRequest(c, "validation failed", "url query parameter is required")
		return
	}

	branches, err := ctrl.gateway.ListBranches(c.Request.Context(), rawURL)
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.BranchListResponse{Branches: branches})
}
