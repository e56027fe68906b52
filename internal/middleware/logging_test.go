package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func setupLoggingRouter(logger *logrus.Logger, opts ...LoggingOption) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(NewLoggingMiddleware(logger, opts...).Logger())
	router.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/fail", func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "boom")
	})

	return router
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	router := setupLoggingRouter(logger)

	t.Run("logs successful requests at info", func(t *testing.T) {
		buf.Reset()

		req := httptest.NewRequest(http.MethodGet, "/ok?verbose=1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		logged := buf.String()
		assert.Contains(t, logged, `"level":"info"`)
		assert.Contains(t, logged, "/ok?verbose=1")
		assert.Contains(t, logged, "request_id")
	})

	t.Run("logs server errors at error", func(t *testing.T) {
		buf.Reset()

		req := httptest.NewRequest(http.MethodGet, "/fail", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Contains(t, buf.String(), `"level":"error"`)
	})

	t.Run("redacts the authorization header", func(t *testing.T) {
		buf.Reset()

		withHeaders := setupLoggingRouter(logger, WithHeaderLogging(true))
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("Authorization", "Bearer super-secret")

		w := httptest.NewRecorder()
		withHeaders.ServeHTTP(w, req)

		logged := buf.String()
		assert.NotContains(t, logged, "super-secret")
		assert.Contains(t, logged, "REDACTED")
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("generates an id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("propagates a provided id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "external-id-42")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "external-id-42", w.Header().Get("X-Request-ID"))
	})
}
