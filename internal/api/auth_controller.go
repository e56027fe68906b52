package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/auth"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/middleware"
	"github.com/quantasec/pqscan/internal/models"
	"github.com/quantasec/pqscan/internal/utils"
)

// AuthController handles authentication API requests
type AuthController struct {
	service *auth.Service
	db      database.Database
	logger  *logrus.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(service *auth.Service, db database.Database, logger *logrus.Logger) *AuthController {
	return &AuthController{
		service: service,
		db:      db,
		logger:  logger,
	}
}

// Login handles POST /auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "validation failed", err.Error())
		return
	}

	resp, err := ctrl.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			utils.Unauthorized(c, "invalid email or password")
		case errors.Is(err, auth.ErrUserInactive):
			utils.Forbidden(c, "user account is inactive")
		default:
			respondServiceError(c, ctrl.logger, err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Register handles POST /auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "validation failed", err.Error())
		return
	}

	user, err := ctrl.service.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			utils.BadRequest(c, "email is already registered")
			return
		}
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetCurrentUser handles GET /user/me
func (ctrl *AuthController) GetCurrentUser(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		utils.Unauthorized(c, "authentication required")
		return
	}

	store := repositories.NewUserRepository(ctrl.db.DB())
	user, err := store.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.Unauthorized(c, "user no longer exists")
			return
		}
		respondServiceError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
