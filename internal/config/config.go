package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Top-level application info
	Version string `mapstructure:"version"`

	// Server configuration
	Server struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		TrustedProxies  []string      `mapstructure:"trusted_proxies"`
		Mode            string        `mapstructure:"mode"`
	} `mapstructure:"server"`

	// Database configuration
	Database struct {
		Type     string `mapstructure:"type"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"` // Sensitive
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"ssl_mode"`
		SQLite   struct {
			Path string `mapstructure:"path"`
		} `mapstructure:"sqlite"`
		// Connection Pool Settings
		MaxOpenConns    int           `mapstructure:"max_open_conns"`
		MaxIdleConns    int           `mapstructure:"max_idle_conns"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
		ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	} `mapstructure:"database"`

	// JWT authentication configuration
	Auth struct {
		Secret         string        `mapstructure:"secret"` // Sensitive
		AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
		TokenIssuer    string        `mapstructure:"token_issuer"`
		TokenAudience  string        `mapstructure:"token_audience"`
	} `mapstructure:"auth"`

	// Git hosting provider configuration
	Provider struct {
		// RequestTimeout bounds every outbound call to a provider API so a
		// slow upstream cannot hold a request handler indefinitely.
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
		GitHubBaseURL  string        `mapstructure:"github_base_url"`
	} `mapstructure:"provider"`

	// Logging configuration
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

// LoadConfig reads configuration from file and environment variables.
// Environment variables use the PQSCAN_ prefix with underscores, e.g.
// PQSCAN_DATABASE_TYPE overrides database.type.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pqscan")

	v.SetEnvPrefix("PQSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults cover it
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values for all configuration keys
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", "dev")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.mode", "development")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pqscan")
	v.SetDefault("database.name", "pqscan")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite.path", "pqscan.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 10*time.Minute)

	v.SetDefault("auth.access_token_ttl", 60*time.Minute)
	v.SetDefault("auth.token_issuer", "pqscan-server")
	v.SetDefault("auth.token_audience", "pqscan-api")

	v.SetDefault("provider.request_timeout", 5*time.Second)
	v.SetDefault("provider.github_base_url", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks the configuration for values that would prevent startup
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.Mode == "production" && c.Auth.Secret == "" {
		return errors.New("auth.secret must be set in production mode")
	}

	if c.Provider.RequestTimeout <= 0 {
		return errors.New("provider.request_timeout must be positive")
	}

	return nil
}
