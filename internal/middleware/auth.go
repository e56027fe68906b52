package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quantasec/pqscan/internal/auth"
	"github.com/quantasec/pqscan/internal/models"
)

// Context keys set by the authentication middleware
const (
	// ContextUserID carries the authenticated user's ID
	ContextUserID = "userID"
	// ContextUserRole carries the authenticated user's role
	ContextUserRole = "userRole"
	// ContextClaims carries the full token claims
	ContextClaims = "tokenClaims"
)

// Authentication errors
var (
	ErrAuthHeaderMissing = errors.New("authorization header is required")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
)

// AuthMiddleware provides JWT authentication for routes
type AuthMiddleware struct {
	jwt *auth.JWTService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(jwt *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwt: jwt,
	}
}

// RequireAuthentication ensures the request carries a valid bearer token
func (m *AuthMiddleware) RequireAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.extractAndValidateToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// RequireAdmin ensures the authenticated user has the admin role. It must be
// registered after RequireAuthentication.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		if role != string(models.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin role required",
			})
			return
		}

		c.Next()
	}
}

// extractAndValidateToken pulls the bearer token from the Authorization
// header and validates it.
func (m *AuthMiddleware) extractAndValidateToken(c *gin.Context) (*auth.Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, ErrAuthHeaderMissing
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, ErrInvalidAuthHeader
	}

	return m.jwt.ValidateToken(parts[1])
}
