package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/gorm"
)

// IntegrationRepository handles database operations for analysis-tool
// integrations.
type IntegrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository creates a new integration store
func NewIntegrationRepository(db *gorm.DB) *IntegrationRepository {
	return &IntegrationRepository{
		db: db,
	}
}

// Create persists a new integration
func (r *IntegrationRepository) Create(ctx context.Context, integration *models.Integration) error {
	if err := r.db.WithContext(ctx).Create(integration).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}

// FindByID retrieves an integration by its identifier
func (r *IntegrationRepository) FindByID(ctx context.Context, id string) (*models.Integration, error) {
	var integration models.Integration
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&integration)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return &integration, nil
}

// List retrieves all integrations ordered by creation time
func (r *IntegrationRepository) List(ctx context.Context) ([]models.Integration, error) {
	var integrations []models.Integration
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&integrations)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return integrations, nil
}

// TouchLastUsed records that the integration was referenced by a scan
func (r *IntegrationRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Integration{}).
		Where("id = ?", id).
		Update("last_used", at)

	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
