package database

import (
	"fmt"
	"sort"
	"time"

	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/gorm"
)

// Migration represents a database migration
type Migration struct {
	// Version is the migration version (e.g., 1, 2, 3, ...)
	Version int

	// Name is a descriptive name for the migration
	Name string

	// Up performs the migration
	Up func(tx *gorm.DB) error

	// Down rolls back the migration
	Down func(tx *gorm.DB) error
}

// MigrationRecord represents a record of a migration in the database
type MigrationRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Version   int    `gorm:"uniqueIndex"`
	Name      string `gorm:"size:255"`
	AppliedAt time.Time
}

// MigrateOptions provides options for migration operations
type MigrateOptions struct {
	// DryRun if true, will only print migration operations without executing them
	DryRun bool

	// Force if true, will allow potentially destructive migration operations
	Force bool

	// Silent if true, will not print output during migration
	Silent bool

	// Logger is a function that logs migration operations
	Logger func(format string, args ...interface{})
}

// DefaultMigrateOptions returns the default migration options
func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		Logger: func(format string, args ...interface{}) {
			fmt.Printf(format+"\n", args...)
		},
	}
}

// Migrator manages database migrations
type Migrator struct {
	db         *gorm.DB
	migrations []*Migration
	options    MigrateOptions
}

// NewMigrator creates a new migrator
func NewMigrator(db *gorm.DB, options MigrateOptions) (*Migrator, error) {
	return &Migrator{
		db:         db,
		migrations: []*Migration{},
		options:    options,
	}, nil
}

// AddMigration adds a migration to the migrator
func (m *Migrator) AddMigration(migration *Migration) {
	m.migrations = append(m.migrations, migration)
}

// AddMigrations adds multiple migrations to the migrator
func (m *Migrator) AddMigrations(migrations ...*Migration) {
	m.migrations = append(m.migrations, migrations...)
}

// RegisterAllMigrations registers all application migrations
func (m *Migrator) RegisterAllMigrations() {
	m.AddMigrations(
		// Initial schema
		&Migration{
			Version: 1,
			Name:    "create_initial_schema",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.User{},
					&models.Repository{},
					&models.Scan{},
					&models.Vulnerability{},
					&models.CBOMReport{},
					&models.VDRReport{},
					&models.Integration{},
					&models.ProviderToken{},
				)
			},
			Down: func(tx *gorm.DB) error {
				// Drop tables in reverse dependency order
				return tx.Migrator().DropTable(
					&models.ProviderToken{},
					&models.Integration{},
					&models.VDRReport{},
					&models.CBOMReport{},
					&models.Vulnerability{},
					&models.Scan{},
					&models.Repository{},
					&models.User{},
				)
			},
		},
	)
}

// MigrateUp migrates the database to the latest version
func (m *Migrator) MigrateUp() error {
	if err := m.db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migration records table: %w", err)
	}

	currentVersion, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}

	m.sortMigrations()

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.log("Migrating to version %d: %s", migration.Version, migration.Name)

		if m.options.DryRun {
			continue
		}

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return fmt.Errorf("migration up error (version %d): %w", migration.Version, err)
			}

			record := MigrationRecord{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now(),
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to record migration (version %d): %w", migration.Version, err)
			}

			return nil
		})

		if err != nil {
			return err
		}

		m.log("Applied migration version %d", migration.Version)
	}

	latestVersion, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}

	m.log("Database is at version %d", latestVersion)
	return nil
}

// MigrateDown rolls back the database to a specific version
func (m *Migrator) MigrateDown(targetVersion int) error {
	if err := m.db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migration records table: %w", err)
	}

	currentVersion, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}

	m.sortMigrationsDesc()

	if !m.options.Force && targetVersion < currentVersion {
		return fmt.Errorf("potentially destructive operation, use force option to proceed")
	}

	for _, migration := range m.migrations {
		if migration.Version <= targetVersion {
			continue
		}
		if migration.Version > currentVersion {
			continue
		}

		m.log("Rolling back version %d: %s", migration.Version, migration.Name)

		if m.options.DryRun {
			continue
		}

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Down(tx); err != nil {
				return fmt.Errorf("migration down error (version %d): %w", migration.Version, err)
			}

			if err := tx.Where("version = ?", migration.Version).Delete(&MigrationRecord{}).Error; err != nil {
				return fmt.Errorf("failed to remove migration record (version %d): %w", migration.Version, err)
			}

			return nil
		})

		if err != nil {
			return err
		}

		m.log("Rolled back migration version %d", migration.Version)
	}

	latestVersion, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}

	m.log("Database is at version %d", latestVersion)
	return nil
}

// GetCurrentVersion returns the current migration version
func (m *Migrator) GetCurrentVersion() (int, error) {
	if !m.db.Migrator().HasTable(&MigrationRecord{}) {
		return 0, nil
	}

	var record MigrationRecord
	err := m.db.Order("version desc").First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current migration version: %w", err)
	}

	return record.Version, nil
}

// sortMigrations sorts migrations by version (ascending)
func (m *Migrator) sortMigrations() {
	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version < m.migrations[j].Version
	})
}

// sortMigrationsDesc sorts migrations by version (descending)
func (m *Migrator) sortMigrationsDesc() {
	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version > m.migrations[j].Version
	})
}

// log logs a message with the configured logger
func (m *Migrator) log(format string, args ...interface{}) {
	if !m.options.Silent && m.options.Logger != nil {
		m.options.Logger(format, args...)
	}
}
