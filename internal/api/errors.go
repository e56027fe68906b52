package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/provider"
	"github.com/quantasec/pqscan/internal/report"
	"github.com/quantasec/pqscan/internal/scanner"
	"github.com/quantasec/pqscan/internal/utils"
)

// respondServiceError maps a service-layer error onto the HTTP error
// envelope. Controllers call it for any error they do not handle
// specifically, so the status taxonomy lives in one place.
func respondServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, scanner.ErrValidation),
		errors.Is(err, provider.ErrInvalidRepositoryURL),
		errors.Is(err, provider.ErrUnsupportedProvider),
		errors.Is(err, report.ErrUnknownKind),
		errors.Is(err, report.ErrUnknownFormat):
		utils.BadRequest(c, "validation failed", err.Error())

	case errors.Is(err, repositories.ErrDuplicateName):
		utils.BadRequest(c, "name already exists")

	case errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, provider.ErrRemoteNotFound):
		utils.NotFound(c, "resource not found")

	case errors.Is(err, provider.ErrRemoteForbidden):
		utils.Forbidden(c, "access to the remote repository was denied")

	case errors.Is(err, scanner.ErrInvalidState):
		utils.Conflict(c, "invalid scan state transition", err.Error())

	case errors.Is(err, repositories.ErrDatabaseOperation):
		logger.WithError(err).Error("Store operation failed")
		utils.ServiceUnavailable(c, "store unavailable")

	case errors.Is(err, provider.ErrUpstream):
		logger.WithError(err).Error("Provider call failed")
		utils.InternalServerError(c, "provider request failed")

	default:
		logger.WithError(err).Error("Unhandled service error")
		utils.InternalServerError(c, "internal server error")
	}
}
