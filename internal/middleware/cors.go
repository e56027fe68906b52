package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig contains configuration for CORS middleware
type CORSConfig struct {
	// AllowOrigins is a list of origins a cross-domain request can be executed from
	AllowOrigins []string

	// AllowMethods is a list of methods the client is allowed to use
	AllowMethods []string

	// AllowHeaders is a list of non-simple headers the client is allowed to use
	AllowHeaders []string

	// ExposeHeaders is a list of headers that are safe to expose to the client
	ExposeHeaders []string

	// AllowCredentials indicates whether the request can include user credentials
	AllowCredentials bool

	// MaxAge indicates how long the results of a preflight request can be cached
	MaxAge time.Duration
}

// DefaultCORSConfig returns the default CORS configuration. The dashboard UI
// downloads report attachments, so Content-Disposition is exposed.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
}

// CORS returns the middleware with default configuration
func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig returns the CORS middleware with custom configuration
func CORSWithConfig(config CORSConfig) gin.HandlerFunc {
	maxAgeSeconds := int(config.MaxAge.Seconds())

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin == "" || !isOriginAllowed(config.AllowOrigins, origin) {
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)

		if config.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", strings.Join(config.AllowMethods, ", "))
			c.Header("Access-Control-Allow-Headers", strings.Join(config.AllowHeaders, ", "))
			c.Header("Access-Control-Max-Age", strconv.Itoa(maxAgeSeconds))
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if len(config.ExposeHeaders) > 0 {
			c.Header("Access-Control-Expose-Headers", strings.Join(config.ExposeHeaders, ", "))
		}

		c.Next()
	}
}

// isOriginAllowed checks if the origin is allowed
func isOriginAllowed(allowedOrigins []string, origin string) bool {
	origin = strings.ToLower(origin)

	for _, allowed := range allowedOrigins {
		allowed = strings.ToLower(allowed)
		if allowed == "*" || allowed == origin {
			return true
		}

		// Wildcard subdomains, e.g. *.example.com
		if strings.HasPrefix(allowed, "*.") {
			if strings.HasSuffix(origin, allowed[1:]) {
				return true
			}
		}
	}

	return false
}
