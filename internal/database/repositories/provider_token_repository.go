package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/gorm"
)

// ProviderTokenRepository handles database operations for stored Git
// hosting credentials.
type ProviderTokenRepository struct {
	db *gorm.DB
}

// NewProviderTokenRepository creates a new provider token store
func NewProviderTokenRepository(db *gorm.DB) *ProviderTokenRepository {
	return &ProviderTokenRepository{
		db: db,
	}
}

// Create persists a new provider token. Token display names are unique per
// user; a duplicate is rejected with ErrDuplicateName before the insert so
// the caller gets a stable error regardless of the underlying driver.
func (r *ProviderTokenRepository) Create(ctx context.Context, token *models.ProviderToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProviderToken{}).
			Where("user_id = ? AND name = ?", token.UserID, token.Name).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
		}
		if count > 0 {
			return ErrDuplicateName
		}

		if err := tx.Create(token).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
		}
		return nil
	})
}

// FindByID retrieves a token by its identifier
func (r *ProviderTokenRepository) FindByID(ctx context.Context, id string) (*models.ProviderToken, error) {
	var token models.ProviderToken
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&token)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return &token, nil
}

// ListByUser retrieves all tokens owned by one user
func (r *ProviderTokenRepository) ListByUser(ctx context.Context, userID string) ([]models.ProviderToken, error) {
	var tokens []models.ProviderToken
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tokens)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return tokens, nil
}

// FindActiveByProvider returns the most recently updated active token for a
// provider, or ErrNotFound when the user has stored none. Used to attach a
// credential to outbound provider calls.
func (r *ProviderTokenRepository) FindActiveByProvider(ctx context.Context, provider models.RepositoryProvider) (*models.ProviderToken, error) {
	var token models.ProviderToken
	result := r.db.WithContext(ctx).
		Where("provider = ? AND is_active = ?", provider, true).
		Order("updated_at DESC").
		First(&token)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return &token, nil
}

// Delete removes a token
func (r *ProviderTokenRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ProviderToken{})

	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// TouchUpdated bumps the token's updated_at, marking recent use
func (r *ProviderTokenRepository) TouchUpdated(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProviderToken{}).
		Where("id = ?", id).
		Update("updated_at", time.Now())

	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
