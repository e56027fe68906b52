package integration

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/quantasec/pqscan/internal/api"
	"github.com/quantasec/pqscan/internal/config"
	"github.com/quantasec/pqscan/internal/models"
	"github.com/quantasec/pqscan/pkg/client"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memoryDatabase struct {
	db *gorm.DB
}

func (m *memoryDatabase) DB() *gorm.DB   { return m.db }
func (m *memoryDatabase) Connect() error { return nil }
func (m *memoryDatabase) Close() error   { return nil }
func (m *memoryDatabase) Ping() error    { return nil }

func (m *memoryDatabase) Migrate(models ...interface{}) error {
	return m.db.AutoMigrate(models...)
}

func (m *memoryDatabase) Transaction(fn func(tx *gorm.DB) error) error {
	return m.db.Transaction(fn)
}

// startTestServer wires the full API over an in-memory store and exposes it
// on an ephemeral port.
func startTestServer(t *testing.T) string {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mdb := &memoryDatabase{db: db}
	require.NoError(t, mdb.Migrate(
		&models.User{},
		&models.Repository{},
		&models.Scan{},
		&models.Vulnerability{},
		&models.CBOMReport{},
		&models.VDRReport{},
		&models.Integration{},
		&models.ProviderToken{},
	))

	cfg := &config.Config{}
	cfg.Version = "integration-test"
	cfg.Server.Mode = "test"
	cfg.Auth.Secret = "integration-test-secret"
	cfg.Auth.AccessTokenTTL = time.Hour
	cfg.Auth.TokenIssuer = "pqscan-server"
	cfg.Auth.TokenAudience = "pqscan-api"
	cfg.Provider.RequestTimeout = 2 * time.Second

	log := logrus.New()
	log.SetOutput(io.Discard)

	server, err := api.NewServer(&api.ServerConfig{
		Config: cfg,
		Logger: log,
		DB:     mdb,
	})
	require.NoError(t, err)
	server.RegisterRoutes()

	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)

	return srv.URL
}

// newAuthenticatedClient registers an account and returns a client holding
// its access token.
func newAuthenticatedClient(t *testing.T, baseURL string) *client.APIClient {
	t.Helper()

	c, err := client.NewClient(client.WithBaseURL(baseURL))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Register(ctx, "integration@example.com", "integration pass", "Integration")
	require.NoError(t, err)

	_, err = c.Login(ctx, "integration@example.com", "integration pass")
	require.NoError(t, err)

	return c
}
