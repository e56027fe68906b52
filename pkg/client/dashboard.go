package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/quantasec/pqscan/internal/models"
)

// GetDashboardStats retrieves the aggregate counts for the dashboard
func (c *APIClient) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.do(ctx, http.MethodGet, APIPathDashboard+"/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetScanTrends retrieves daily scan counts for the trailing window. A
// non-positive days value uses the server default.
func (c *APIClient) GetScanTrends(ctx context.Context, days int) ([]models.TrendPoint, error) {
	path := APIPathDashboard + "/trends"
	if days > 0 {
		path = fmt.Sprintf("%s?days=%d", path, days)
	}

	var points []models.TrendPoint
	if err := c.do(ctx, http.MethodGet, path, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}
