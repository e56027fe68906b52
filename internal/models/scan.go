package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScanStatus represents the lifecycle state of a scan
type ScanStatus string

const (
	// ScanStatusPending means the scan has been created but not started
	ScanStatusPending ScanStatus = "pending"
	// ScanStatusScanning means the scan is currently running
	ScanStatusScanning ScanStatus = "scanning"
	// ScanStatusCompleted means the scan finished successfully
	ScanStatusCompleted ScanStatus = "completed"
	// ScanStatusFailed means the scan terminated with an error
	ScanStatusFailed ScanStatus = "failed"
)

// Terminal reports whether the status permits no further transitions
func (s ScanStatus) Terminal() bool {
	return s == ScanStatusCompleted || s == ScanStatusFailed
}

// Valid checks whether the status value is a known scan status
func (s ScanStatus) Valid() bool {
	switch s {
	case ScanStatusPending, ScanStatusScanning, ScanStatusCompleted, ScanStatusFailed:
		return true
	}
	return false
}

// ScanConfig describes which tools and rules a scan runs with.
// It is persisted as an opaque JSON column alongside the scan.
type ScanConfig struct {
	Tools           []string `json:"tools,omitempty"`
	TargetLanguages []string `json:"target_languages,omitempty"`
	CustomRules     []string `json:"custom_rules,omitempty"`
}

// Scan represents one static-analysis execution attempt against a repository
type Scan struct {
	ID           string                         `json:"id" gorm:"primaryKey;size:36"`
	RepositoryID string                         `json:"repository_id" gorm:"size:36;not null;index"`
	Branch       string                         `json:"branch" gorm:"not null;default:main"`
	Status       ScanStatus                     `json:"status" gorm:"not null;default:pending;index"`
	Progress     int                            `json:"progress" gorm:"not null;default:0"`
	StartedAt    *time.Time                     `json:"started_at,omitempty"`
	CompletedAt  *time.Time                     `json:"completed_at,omitempty"`
	ErrorMessage string                         `json:"error_message,omitempty"`
	TotalFiles   int                            `json:"total_files" gorm:"not null;default:0"`
	IntegrationID string                        `json:"integration_id,omitempty" gorm:"size:36;index"`
	ScanConfig   datatypes.JSONType[ScanConfig] `json:"scan_config"`
	CreatedAt    time.Time                      `json:"created_at"`
}

// TableName returns the table name for the Scan model
func (Scan) TableName() string {
	return "scans"
}

// BeforeCreate assigns an identifier when none was provided
func (s *Scan) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
