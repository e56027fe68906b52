package models

import "time"

// ScanCreateResponse couples the created scan with an opaque job handle the
// UI can use to poll progress. The handle is distinct from the scan ID.
type ScanCreateResponse struct {
	Scan  *Scan  `json:"scan"`
	JobID string `json:"job_id"`
}

// BranchListResponse carries the branch names of a remote repository
type BranchListResponse struct {
	Branches []string `json:"branches"`
}

// TokenTestResponse reports the outcome of a single credential check
// against the provider API.
type TokenTestResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

// RepositoryDeleteResponse confirms a cascading delete by echoing the ID
type RepositoryDeleteResponse struct {
	ID string `json:"id"`
}

// DashboardStats summarizes counts across the store for the dashboard
// landing page.
type DashboardStats struct {
	Repositories    int64            `json:"repositories"`
	ScansByStatus   map[string]int64 `json:"scans_by_status"`
	VulnsBySeverity map[string]int64 `json:"vulnerabilities_by_severity"`
	RecentScans     []Scan           `json:"recent_scans"`
}

// TrendPoint is one day of scan activity
type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// LoginResponse carries an issued access token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
