package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/gorm"
)

// ScanFilter narrows a scan listing. Zero values mean "no filter".
type ScanFilter struct {
	RepositoryID string
	Status       models.ScanStatus
}

// ScanRepository handles database operations for scans
type ScanRepository struct {
	db *gorm.DB
}

// NewScanRepository creates a new scan store
func NewScanRepository(db *gorm.DB) *ScanRepository {
	return &ScanRepository{
		db: db,
	}
}

// Create persists a new scan
func (r *ScanRepository) Create(ctx context.Context, scan *models.Scan) error {
	if err := r.db.WithContext(ctx).Create(scan).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}

// FindByID retrieves a scan by its identifier
func (r *ScanRepository) FindByID(ctx context.Context, id string) (*models.Scan, error) {
	var scan models.Scan
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&scan)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return &scan, nil
}

// List retrieves scans matching the filter, newest first. No pagination is
// applied; callers must handle unbounded result sets.
func (r *ScanRepository) List(ctx context.Context, filter ScanFilter) ([]models.Scan, error) {
	query := r.db.WithContext(ctx).Model(&models.Scan{})

	if filter.RepositoryID != "" {
		query = query.Where("repository_id = ?", filter.RepositoryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var scans []models.Scan
	result := query.Order("created_at DESC").Find(&scans)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return scans, nil
}

// Updates applies the given column updates to a scan
func (r *ScanRepository) Updates(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Scan{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
