package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CBOMReport stores the cryptographic bill of materials produced by a scan.
// The content is an opaque JSON document generated by the analysis pipeline;
// this service stores and serves it without interpreting it.
type CBOMReport struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	ScanID       string         `json:"scan_id" gorm:"size:36;not null;uniqueIndex"`
	RepositoryID string         `json:"repository_id" gorm:"size:36;not null;index"`
	Content      datatypes.JSON `json:"content" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TableName returns the table name for the CBOMReport model
func (CBOMReport) TableName() string {
	return "cbom_reports"
}

// BeforeCreate assigns an identifier when none was provided
func (r *CBOMReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// VDRReport stores the vulnerability disclosure report for one finding
type VDRReport struct {
	ID              string         `json:"id" gorm:"primaryKey;size:36"`
	VulnerabilityID string         `json:"vulnerability_id" gorm:"size:36;not null;index"`
	Content         datatypes.JSON `json:"content" gorm:"not null"`
	CreatedAt       time.Time      `json:"created_at"`
}

// TableName returns the table name for the VDRReport model
func (VDRReport) TableName() string {
	return "vdr_reports"
}

// BeforeCreate assigns an identifier when none was provided
func (r *VDRReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
