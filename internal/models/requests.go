package models

import (
	"encoding/json"
	"time"
)

// RepositoryCreateRequest is the request body for registering a repository
type RepositoryCreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	URL         string   `json:"url" binding:"required,url"`
	Provider    string   `json:"provider" binding:"required,oneof=github gitlab bitbucket local"`
	Description string   `json:"description"`
	Languages   []string `json:"languages"`
}

// RepositoryUpdateRequest is the request body for partially updating a
// repository. Absent fields are left untouched.
type RepositoryUpdateRequest struct {
	Name        *string   `json:"name,omitempty"`
	URL         *string   `json:"url,omitempty" binding:"omitempty,url"`
	Provider    *string   `json:"provider,omitempty" binding:"omitempty,oneof=github gitlab bitbucket local"`
	Description *string   `json:"description,omitempty"`
	Languages   *[]string `json:"languages,omitempty"`
}

// ScanCreateRequest is the request body for launching a scan
type ScanCreateRequest struct {
	RepositoryID  string     `json:"repository_id" binding:"required"`
	Branch        string     `json:"branch"`
	IntegrationID string     `json:"integration_id"`
	ScanConfig    ScanConfig `json:"scan_config"`
}

// ScanProgressRequest is the request body for reporting scanner progress
type ScanProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

// FindingRequest describes one vulnerability reported by the external
// scanner when a scan completes. The optional VDR document is stored
// verbatim alongside the finding.
type FindingRequest struct {
	Severity       string          `json:"severity" binding:"required,severity"`
	Title          string          `json:"title" binding:"required"`
	Description    string          `json:"description"`
	FilePath       string          `json:"file_path"`
	LineNumber     int             `json:"line_number" binding:"omitempty,gte=0"`
	Algorithm      string          `json:"algorithm"`
	Recommendation string          `json:"recommendation"`
	VDR            json.RawMessage `json:"vdr,omitempty"`
}

// ScanCompleteRequest is the request body for marking a scan completed
type ScanCompleteRequest struct {
	TotalFiles int              `json:"total_files" binding:"gte=0"`
	Findings   []FindingRequest `json:"findings"`
	CBOM       json.RawMessage  `json:"cbom,omitempty"`
}

// ScanFailRequest is the request body for marking a scan failed
type ScanFailRequest struct {
	ErrorMessage string `json:"error_message" binding:"required"`
}

// ProviderTokenCreateRequest is the request body for storing a provider credential
type ProviderTokenCreateRequest struct {
	Name               string     `json:"name" binding:"required"`
	Provider           string     `json:"provider" binding:"required,oneof=github gitlab bitbucket"`
	TokenType          string     `json:"token_type"`
	AccessToken        string     `json:"access_token" binding:"required"`
	RefreshToken       string     `json:"refresh_token"`
	ExpiresAt          *time.Time `json:"expires_at"`
	Scopes             []string   `json:"scopes"`
	OrganizationAccess []string   `json:"organization_access"`
}

// IntegrationCreateRequest is the request body for registering an integration
type IntegrationCreateRequest struct {
	Name     string          `json:"name" binding:"required"`
	Type     string          `json:"type" binding:"required"`
	APIKey   string          `json:"api_key"`
	Config   json.RawMessage `json:"config,omitempty"`
	IsActive *bool           `json:"is_active"`
}

// LoginRequest is the request body for authenticating a user
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the request body for creating a user account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name"`
}
