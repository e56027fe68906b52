package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/models"
	"github.com/quantasec/pqscan/internal/utils"
	"gorm.io/datatypes"
)

// IntegrationController handles analysis-tool integration API requests
type IntegrationController struct {
	db     database.Database
	logger *logrus.Logger
}

// NewIntegrationController creates a new integration controller
func NewIntegrationController(db database.Database, logger *logrus.Logger) *IntegrationController {
	return &IntegrationController{
		db:     db,
		logger: logger,
	}
}

// List handles GET /integrations
func (ctrl *IntegrationController) List(c *gin.Context) {
	store := repositories.NewIntegrationRepository(ctrl.db.DB())

	integrations, err := store.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, integrations)
}

// Get handles GET /integrations/:id
func (ctrl *IntegrationController) Get(c *gin.Context) {
	store := repositories.NewIntegrationRepository(ctrl.db.DB())

	integration, err := store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, integration)
}

// Create handles POST /integrations
func (ctrl *IntegrationController) Create(c *gin.Context) {
	var req models.IntegrationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "validation failed", err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	integration := &models.Integration{
		Name:     req.Name,
		Type:     req.Type,
		APIKey:   req.APIKey,
		Config:   datatypes.JSON(req.Config),
		IsActive: active,
	}

	store := repositories.NewIntegrationRepository(ctrl.db.DB())
	if err := store.Create(c.Request.Context(), integration); err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	ctrl.logger.WithFields(logrus.Fields{
		"integration_id": integration.ID,
		"type":           integration.Type,
	}).Info("Integration registered")

	c.JSON(http.StatusCreated, integration)
}
