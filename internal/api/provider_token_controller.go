package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/middleware"
	"github.com/quantasec/pqscan/internal/models"
	"github.com/quantasec/pqscan/internal/provider"
	"github.com/quantasec/pqscan/internal/utils"
	"gorm.io/datatypes"
)

// ProviderTokenController handles stored Git hosting credentials. Token
// material goes into the store but never comes back out in responses.
type ProviderTokenController struct {
	db      database.Database
	gateway *provider.Gateway
	logger  *logrus.Logger
}

// NewProviderTokenController creates a new provider token controller
func NewProviderTokenController(db database.Database, gateway *provider.Gateway, logger *logrus.Logger) *ProviderTokenController {
	return &ProviderTokenController{
		db:      db,
		gateway: gateway,
		logger:  logger,
	}
}

// List handles GET /settings/provider-tokens. Only the caller's own tokens
// are returned.
func (ctrl *ProviderTokenController) List(c *gin.Context) {
	store := repositories.NewProviderTokenRepository(ctrl.db.DB())

	tokens, err := store.ListByUser(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Create handles POST /settings/provider-tokens
func (ctrl *ProviderTokenController) Create(c *gin.Context) {
	var req models.ProviderTokenCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "validation failed", err.Error())
		return
	}

	token := &models.ProviderToken{
		UserID:             c.GetString(middleware.ContextUserID),
		Name:               req.Name,
		Provider:           models.RepositoryProvider(req.Provider),
		TokenType:          req.TokenType,
		AccessToken:        req.AccessToken,
		RefreshToken:       req.RefreshToken,
		ExpiresAt:          req.ExpiresAt,
		Scopes:             datatypes.NewJSONSlice(req.Scopes),
		OrganizationAccess: datatypes.NewJSONSlice(req.OrganizationAccess),
		IsActive:           true,
	}

	store := repositories.NewProviderTokenRepository(ctrl.db.DB())
	if err := store.Create(c.Request.Context(), token); err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	ctrl.logger.WithFields(logrus.Fields{
		"token_id": token.ID,
		"provider": token.Provider,
	}).Info("Provider token stored")

	c.JSON(http.StatusCreated, token)
}

// Test handles POST /settings/provider-tokens/:id/test. A rejected
// credential is a successful check with valid=false, not an error.
func (ctrl *ProviderTokenController) Test(c *gin.Context) {
	result, err := ctrl.gateway.TestToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Delete handles DELETE /settings/provider-tokens/:id
func (ctrl *ProviderTokenController) Delete(c *gin.Context) {
	id := c.Param("id")

	store := repositories.NewProviderTokenRepository(ctrl.db.DB())
	if err := store.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, ctrl.logger, err)
		return
	}

	ctrl.logger.WithField("token_id", id).Info("Provider token deleted")

	c.JSON(http.StatusOK, gin.H{"id": id})
}
