package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LoggingMiddleware logs HTTP requests and responses
type LoggingMiddleware struct {
	logger     *logrus.Logger
	logHeaders bool
}

// LoggingOption configures the logging middleware
type LoggingOption func(*LoggingMiddleware)

// WithHeaderLogging enables logging of request headers
func WithHeaderLogging(enabled bool) LoggingOption {
	return func(m *LoggingMiddleware) {
		m.logHeaders = enabled
	}
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *logrus.Logger, opts ...LoggingOption) *LoggingMiddleware {
	m := &LoggingMiddleware{
		logger: logger,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Logger returns a gin middleware function for logging requests
func (m *LoggingMiddleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		fullPath := path
		if raw != "" {
			fullPath = path + "?" + raw
		}

		fields := logrus.Fields{
			"status":     statusCode,
			"latency":    latency.String(),
			"client_ip":  c.ClientIP(),
			"method":     c.Request.Method,
			"path":       fullPath,
			"request_id": c.GetString("request_id"),
		}

		if m.logHeaders {
			headers := make(map[string][]string)
			for k, v := range c.Request.Header {
				// Credentials never land in logs
				if k == "Authorization" || k == "Cookie" {
					headers[k] = []string{"[REDACTED]"}
					continue
				}
				headers[k] = v
			}
			fields["request_headers"] = headers
		}

		if errorMessage != "" {
			fields["error"] = errorMessage
		}

		entry := m.logger.WithFields(fields)
		switch {
		case statusCode >= 500:
			entry.Error("Request processed with error")
		case statusCode >= 400:
			entry.Warn("Request processed with warning")
		default:
			entry.Info("Request processed")
		}
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
