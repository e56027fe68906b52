package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ReportDownload is a downloaded report document
type ReportDownload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DownloadCBOM downloads the CBOM report of a scan. Format is "json" or
// "pdf"; empty means json.
func (c *APIClient) DownloadCBOM(ctx context.Context, scanID, format string) (*ReportDownload, error) {
	return c.downloadReport(ctx, APIPathCBOMReports, scanID, format)
}

// DownloadVDR downloads the VDR report of a vulnerability
func (c *APIClient) DownloadVDR(ctx context.Context, vulnerabilityID, format string) (*ReportDownload, error) {
	return c.downloadReport(ctx, APIPathVDRReports, vulnerabilityID, format)
}

func (c *APIClient) downloadReport(ctx context.Context, basePath, key, format string) (*ReportDownload, error) {
	path := basePath + "/" + key
	if format != "" {
		path += "/" + format
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleResponse(resp, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read report body: %w", err)
	}

	return &ReportDownload{
		Filename:    filenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// filenameFromDisposition extracts the filename from an attachment header
func filenameFromDisposition(header string) string {
	const marker = "filename="
	idx := strings.Index(header, marker)
	if idx < 0 {
		return ""
	}
	return strings.Trim(header[idx+len(marker):], `"`)
}
