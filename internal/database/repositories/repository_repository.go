package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/gorm"
)

// RepositoryRepository handles database operations for registered
// source-code repositories.
type RepositoryRepository struct {
	db *gorm.DB
}

// NewRepositoryRepository creates a new repository store
func NewRepositoryRepository(db *gorm.DB) *RepositoryRepository {
	return &RepositoryRepository{
		db: db,
	}
}

// Create persists a new repository. Display names are unique; a duplicate is
// rejected with ErrDuplicateName before the insert so the caller gets a
// stable error regardless of the underlying driver.
func (r *RepositoryRepository) Create(ctx context.Context, repo *models.Repository) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Repository{}).
			Where("name = ?", repo.Name).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
		}
		if count > 0 {
			return ErrDuplicateName
		}

		if err := tx.Create(repo).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
		}
		return nil
	})
}

// FindByID retrieves a repository by its identifier
func (r *RepositoryRepository) FindByID(ctx context.Context, id string) (*models.Repository, error) {
	var repo models.Repository
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&repo)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return &repo, nil
}

// Exists reports whether a repository with the given identifier exists
func (r *RepositoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Repository{}).
		Where("id = ?", id).
		Count(&count)

	if result.Error != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return count > 0, nil
}

// List retrieves all repositories ordered by creation time
func (r *RepositoryRepository) List(ctx context.Context) ([]models.Repository, error) {
	var repos []models.Repository
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&repos)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return repos, nil
}

// Update applies the given column updates to a repository
func (r *RepositoryRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Repository, error) {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&models.Repository{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.FindByID(ctx, id)
}

// TouchLastScan records the time of the latest successful scan
func (r *RepositoryRepository) TouchLastScan(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Repository{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_scan_at": at,
			"updated_at":   at,
		})

	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteCascade removes a repository together with every row that depends on
// it. The store enforces no referential actions of its own, so the cascade
// deletes children-of-children first: VDR reports (via the repository's
// vulnerability IDs), then vulnerabilities, CBOM reports and scans, and the
// repository row last. The whole cascade runs in a single transaction; two
// requests racing on the same repository are resolved by the RowsAffected
// guard on the final delete, which rolls the loser back with ErrNotFound.
func (r *RepositoryRepository) DeleteCascade(ctx context.Context, id string) (string, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vulnIDs []string
		if err := tx.Model(&models.Vulnerability{}).
			Where("repository_id = ?", id).
			Pluck("id", &vulnIDs).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
		}

		if len(vulnIDs) > 0 {
			if err := tx.Where("vulnerability_id IN ?", vulnIDs).
				Delete(&models.VDRReport{}).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
			}
		}

		if err := tx.Where("repository_id = ?", id).
			Delete(&models.Vulnerability{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
		}

		if err := tx.Where("repository_id = ?", id).
			Delete(&models.CBOMReport{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
		}

		if err := tx.Where("repository_id = ?", id).
			Delete(&models.Scan{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Repository{})
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}
