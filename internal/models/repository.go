package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RepositoryProvider identifies the Git hosting service a repository lives on
type RepositoryProvider string

const (
	// ProviderGitHub represents a repository hosted on github.com
	ProviderGitHub RepositoryProvider = "github"
	// ProviderGitLab represents a repository hosted on gitlab.com
	ProviderGitLab RepositoryProvider = "gitlab"
	// ProviderBitbucket represents a repository hosted on bitbucket.org
	ProviderBitbucket RepositoryProvider = "bitbucket"
	// ProviderLocal represents a repository on the local filesystem
	ProviderLocal RepositoryProvider = "local"
)

// Valid checks whether the provider value is one of the supported providers
func (p RepositoryProvider) Valid() bool {
	switch p {
	case ProviderGitHub, ProviderGitLab, ProviderBitbucket, ProviderLocal:
		return true
	}
	return false
}

// Repository represents a registered source-code repository
type Repository struct {
	ID          string                      `json:"id" gorm:"primaryKey;size:36"`
	Name        string                      `json:"name" gorm:"not null;index"`
	URL         string                      `json:"url" gorm:"not null"`
	Provider    RepositoryProvider          `json:"provider" gorm:"not null;default:github"`
	Description string                      `json:"description"`
	Languages   datatypes.JSONSlice[string] `json:"languages"`
	LastScanAt  *time.Time                  `json:"last_scan_at,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// TableName returns the table name for the Repository model
func (Repository) TableName() string {
	return "repositories"
}

// BeforeCreate assigns an identifier when none was provided
func (r *Repository) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
