package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/quantasec/pqscan/internal/config"
	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testDatabase struct {
	db *gorm.DB
}

func (t *testDatabase) DB() *gorm.DB   { return t.db }
func (t *testDatabase) Connect() error { return nil }
func (t *testDatabase) Close() error   { return nil }
func (t *testDatabase) Ping() error    { return nil }

func (t *testDatabase) Migrate(models ...interface{}) error {
	return t.db.AutoMigrate(models...)
}

func (t *testDatabase) Transaction(fn func(tx *gorm.DB) error) error {
	return t.db.Transaction(fn)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Version = "test"
	cfg.Server.Mode = "test"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8080
	cfg.Auth.Secret = "api-test-secret"
	cfg.Auth.AccessTokenTTL = time.Hour
	cfg.Auth.TokenIssuer = "pqscan-server"
	cfg.Auth.TokenAudience = "pqscan-api"
	cfg.Provider.RequestTimeout = 2 * time.Second
	return cfg
}

// setupTestServer builds a fully wired server over an in-memory store and
// returns it with routes registered.
func setupTestServer(t *testing.T) (*Server, *testDatabase) {
	t.Helper()
	return setupTestServerWithConfig(t, testConfig())
}

func setupTestServerWithConfig(t *testing.T, cfg *config.Config) (*Server, *testDatabase) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	tdb := &testDatabase{db: db}
	require.NoError(t, tdb.Migrate(
		&models.User{},
		&models.Repository{},
		&models.Scan{},
		&models.Vulnerability{},
		&models.CBOMReport{},
		&models.VDRReport{},
		&models.Integration{},
		&models.ProviderToken{},
	))

	log := logrus.New()
	log.SetOutput(io.Discard)

	server, err := NewServer(&ServerConfig{
		Config: cfg,
		Logger: log,
		DB:     tdb,
	})
	require.NoError(t, err)

	server.RegisterRoutes()
	return server, tdb
}

// doRequest performs one request against the router. A non-empty token is
// sent as a bearer credential.
func doRequest(t *testing.T, server *Server, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

// loginTestUser registers a fresh account and returns its access token
func loginTestUser(t *testing.T, server *Server) string {
	t.Helper()

	w := doRequest(t, server, http.MethodPost, "/api/v1/auth/register", gin.H{
		"email":    "tester@example.com",
		"password": "correct horse battery",
		"name":     "Tester",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, server, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "tester@example.com",
		"password": "correct horse battery",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthCheck(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestAuthenticationRequired(t *testing.T) {
	server, _ := setupTestServer(t)

	paths := []string{
		"/api/v1/repositories",
		"/api/v1/scans",
		"/api/v1/dashboard/stats",
		"/api/v1/settings/provider-tokens",
		"/api/v1/integrations",
	}

	for _, path := range paths {
		w := doRequest(t, server, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	server, _ := setupTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/api/v1/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "route not found"}`, w.Body.String())
}

func TestRegisterLoginAndMe(t *testing.T) {
	server, _ := setupTestServer(t)
	token := loginTestUser(t, server)

	t.Run("me returns the authenticated user", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/user/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var user models.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
		assert.Equal(t, "tester@example.com", user.Email)
		assert.Empty(t, user.Password)
	})

	t.Run("duplicate registration is rejected", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/v1/auth/register", gin.H{
			"email":    "tester@example.com",
			"password": "another password",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "email is already registered"}`, w.Body.String())
	})

	t.Run("wrong password yields 401", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/v1/auth/login", gin.H{
			"email":    "tester@example.com",
			"password": "wrong password",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error": "invalid email or password"}`, w.Body.String())
	})

	t.Run("unknown email yields the same 401", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/v1/auth/login", gin.H{
			"email":    "ghost@example.com",
			"password": "whatever pass",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error": "invalid email or password"}`, w.Body.String())
	})
}
