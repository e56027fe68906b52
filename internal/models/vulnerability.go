package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Severity classifies how urgent a finding is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Valid checks whether the severity value is a known severity
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// Vulnerability represents one post-quantum-cryptography finding produced by
// a scan. Rows are immutable after creation and removed only through the
// repository cascade.
type Vulnerability struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	RepositoryID   string    `json:"repository_id" gorm:"size:36;not null;index"`
	ScanID         string    `json:"scan_id" gorm:"size:36;not null;index"`
	Severity       Severity  `json:"severity" gorm:"index"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	FilePath       string    `json:"file_path"`
	LineNumber     int       `json:"line_number"`
	Algorithm      string    `json:"algorithm"`
	Recommendation string    `json:"recommendation"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName returns the table name for the Vulnerability model
func (Vulnerability) TableName() string {
	return "vulnerabilities"
}

// BeforeCreate assigns an identifier when none was provided
func (v *Vulnerability) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
