package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/gorm"
)

// VulnerabilityRepository handles database operations for scan findings
type VulnerabilityRepository struct {
	db *gorm.DB
}

// NewVulnerabilityRepository creates a new vulnerability store
func NewVulnerabilityRepository(db *gorm.DB) *VulnerabilityRepository {
	return &VulnerabilityRepository{
		db: db,
	}
}

// CreateBatch persists a set of findings in one statement
func (r *VulnerabilityRepository) CreateBatch(ctx context.Context, vulns []models.Vulnerability) error {
	if len(vulns) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&vulns).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}

// FindByID retrieves a vulnerability by its identifier
func (r *VulnerabilityRepository) FindByID(ctx context.Context, id string) (*models.Vulnerability, error) {
	var vuln models.Vulnerability
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&vuln)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return &vuln, nil
}

// ListByScan retrieves all findings produced by one scan
func (r *VulnerabilityRepository) ListByScan(ctx context.Context, scanID string) ([]models.Vulnerability, error) {
	var vulns []models.Vulnerability
	result := r.db.WithContext(ctx).
		Where("scan_id = ?", scanID).
		Order("created_at").
		Find(&vulns)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return vulns, nil
}

// ListByRepository retrieves all findings for a repository across scans
func (r *VulnerabilityRepository) ListByRepository(ctx context.Context, repositoryID string) ([]models.Vulnerability, error) {
	var vulns []models.Vulnerability
	result := r.db.WithContext(ctx).
		Where("repository_id = ?", repositoryID).
		Order("created_at").
		Find(&vulns)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return vulns, nil
}

// CountByScan counts findings for one scan
func (r *VulnerabilityRepository) CountByScan(ctx context.Context, scanID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Vulnerability{}).
		Where("scan_id = ?", scanID).
		Count(&count)

	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return count, nil
}
