package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/gorm"
)

// ReportRepository handles database operations for CBOM and VDR report
// documents. Reports are immutable after creation.
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report store
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{
		db: db,
	}
}

// CreateCBOM persists a cryptographic bill of materials for a scan
func (r *ReportRepository) CreateCBOM(ctx context.Context, report *models.CBOMReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}

// FindCBOMByScanID retrieves the CBOM report for a scan
func (r *ReportRepository) FindCBOMByScanID(ctx context.Context, scanID string) (*models.CBOMReport, error) {
	var report models.CBOMReport
	result := r.db.WithContext(ctx).
		Where("scan_id = ?", scanID).
		First(&report)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return &report, nil
}

// CreateVDR persists a vulnerability disclosure report for a finding
func (r *ReportRepository) CreateVDR(ctx context.Context, report *models.VDRReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}

// FindVDRByVulnerabilityID retrieves the VDR report for one finding.
// The lookup requires an exact match; a missing report is ErrNotFound,
// never an arbitrary other row.
func (r *ReportRepository) FindVDRByVulnerabilityID(ctx context.Context, vulnerabilityID string) (*models.VDRReport, error) {
	var report models.VDRReport
	result := r.db.WithContext(ctx).
		Where("vulnerability_id = ?", vulnerabilityID).
		First(&report)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return &report, nil
}
