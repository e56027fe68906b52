package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Integration represents a configured external analysis tool or service
// (semgrep, bandit, custom analyzers) that scans can reference.
type Integration struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	Name      string         `json:"name" gorm:"not null"`
	Type      string         `json:"type" gorm:"not null;index"`
	APIKey    string         `json:"-" gorm:"column:api_key"`
	Config    datatypes.JSON `json:"config,omitempty"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	LastUsed  *time.Time     `json:"last_used,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName returns the table name for the Integration model
func (Integration) TableName() string {
	return "integrations"
}

// BeforeCreate assigns an identifier when none was provided
func (i *Integration) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
