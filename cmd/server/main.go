package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/api"
	"github.com/quantasec/pqscan/internal/config"
	"github.com/quantasec/pqscan/internal/database"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	configureLogger(logger, cfg)

	db, err := database.InitDatabase(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	if err := runMigrations(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	server, err := api.NewServer(&api.ServerConfig{
		Config: cfg,
		Logger: logger,
		DB:     db,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create API server")
	}

	if err := server.Start(); err != nil {
		logger.WithError(err).Fatal("Server exited with error")
	}
}

// configureLogger applies the logging section of the configuration
func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.WithField("level", cfg.Logging.Level).Warn("Unknown log level, defaulting to info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// runMigrations brings the schema to the latest version
func runMigrations(db database.Database, logger *logrus.Logger) error {
	options := database.DefaultMigrateOptions()
	options.Logger = func(format string, args ...interface{}) {
		logger.Infof(format, args...)
	}

	migrator, err := database.NewMigrator(db.DB(), options)
	if err != nil {
		return err
	}

	migrator.RegisterAllMigrations()
	return migrator.MigrateUp()
}
