package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 60*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 5*time.Second, cfg.Provider.RequestTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PQSCAN_SERVER_PORT", "9090")
	t.Setenv("PQSCAN_DATABASE_TYPE", "postgres")
	t.Setenv("PQSCAN_LOGGING_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Database.Type = "sqlite"
		cfg.Server.Port = 8080
		cfg.Server.Mode = "development"
		cfg.Provider.RequestTimeout = time.Second
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("unsupported database type", func(t *testing.T) {
		cfg := base()
		cfg.Database.Type = "mongodb"
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("production requires an auth secret", func(t *testing.T) {
		cfg := base()
		cfg.Server.Mode = "production"
		assert.Error(t, cfg.Validate())

		cfg.Auth.Secret = "long-enough-secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("non-positive provider timeout", func(t *testing.T) {
		cfg := base()
		cfg.Provider.RequestTimeout = 0
		assert.Error(t, cfg.Validate())
	})
}
