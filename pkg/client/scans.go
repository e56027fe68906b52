package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/quantasec/pqscan/internal/models"
)

// ScanListOptions filters scan listings
type ScanListOptions struct {
	RepositoryID string
	Status       models.ScanStatus
}

// ListScans retrieves scans, optionally filtered
func (c *APIClient) ListScans(ctx context.Context, opts ScanListOptions) ([]models.Scan, error) {
	query := url.Values{}
	if opts.RepositoryID != "" {
		query.Set("repository_id", opts.RepositoryID)
	}
	if opts.Status != "" {
		query.Set("status", string(opts.Status))
	}

	path := APIPathScans
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var scans []models.Scan
	if err := c.do(ctx, http.MethodGet, path, nil, &scans); err != nil {
		return nil, err
	}
	return scans, nil
}

// GetScan retrieves one scan by ID
func (c *APIClient) GetScan(ctx context.Context, id string) (*models.Scan, error) {
	var scan models.Scan
	if err := c.do(ctx, http.MethodGet, APIPathScans+"/"+id, nil, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// CreateScan launches a scan and returns it with its job handle
func (c *APIClient) CreateScan(ctx context.Context, req models.ScanCreateRequest) (*models.ScanCreateResponse, error) {
	var resp models.ScanCreateResponse
	if err := c.do(ctx, http.MethodPost, APIPathScans, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartScan transitions a pending scan to scanning
func (c *APIClient) StartScan(ctx context.Context, id string) (*models.Scan, error) {
	var scan models.Scan
	if err := c.do(ctx, http.MethodPost, APIPathScans+"/"+id+"/start", nil, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// ReportProgress records scanner progress for a running scan
func (c *APIClient) ReportProgress(ctx context.Context, id string, progress int) (*models.Scan, error) {
	var scan models.Scan
	err := c.do(ctx, http.MethodPatch, APIPathScans+"/"+id+"/progress", models.ScanProgressRequest{
		Progress: &progress,
	}, &scan)
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// CompleteScan marks a scan completed and delivers its outputs
func (c *APIClient) CompleteScan(ctx context.Context, id string, req models.ScanCompleteRequest) (*models.Scan, error) {
	var scan models.Scan
	if err := c.do(ctx, http.MethodPost, APIPathScans+"/"+id+"/complete", req, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// FailScan marks a scan failed with an error message
func (c *APIClient) FailScan(ctx context.Context, id, errorMessage string) (*models.Scan, error) {
	var scan models.Scan
	err := c.do(ctx, http.MethodPost, APIPathScans+"/"+id+"/fail", models.ScanFailRequest{
		ErrorMessage: errorMessage,
	}, &scan)
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// ListScanVulnerabilities retrieves the findings of one scan
func (c *APIClient) ListScanVulnerabilities(ctx context.Context, id string) ([]models.Vulnerability, error) {
	var vulns []models.Vulnerability
	if err := c.do(ctx, http.MethodGet, APIPathScans+"/"+id+"/vulnerabilities", nil, &vulns); err != nil {
		return nil, err
	}
	return vulns, nil
}
