package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProviderToken is a stored credential granting read access to a Git hosting
// service. Token material is never serialized in API responses.
type ProviderToken struct {
	ID                 string                      `json:"id" gorm:"primaryKey;size:36"`
	UserID             string                      `json:"user_id" gorm:"size:36;not null;index:idx_provider_tokens_user_name,unique"`
	Name               string                      `json:"name" gorm:"not null;index:idx_provider_tokens_user_name,unique"`
	Provider           RepositoryProvider          `json:"provider" gorm:"not null;index"`
	TokenType          string                      `json:"token_type"`
	AccessToken        string                      `json:"-" gorm:"not null"`
	RefreshToken       string                      `json:"-"`
	ExpiresAt          *time.Time                  `json:"expires_at,omitempty"`
	Scopes             datatypes.JSONSlice[string] `json:"scopes,omitempty"`
	OrganizationAccess datatypes.JSONSlice[string] `json:"organization_access,omitempty"`
	IsActive           bool                        `json:"is_active" gorm:"not null;default:true"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// TableName returns the table name for the ProviderToken model
func (ProviderToken) TableName() string {
	return "provider_tokens"
}

// BeforeCreate assigns an identifier when none was provided
func (t *ProviderToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the token carries an expiry in the past
func (t *ProviderToken) Expired() bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(time.Now())
}
