package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/gorm"
)

// StatsRepository runs the read-only projection queries behind the
// dashboard landing page. It never mutates the store.
type StatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats store
func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{
		db: db,
	}
}

type statusCount struct {
	Status string
	Count  int64
}

type severityCount struct {
	Severity string
	Count    int64
}

// CountRepositories returns the total number of registered repositories
func (r *StatsRepository) CountRepositories(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Repository{}).
		Count(&count)

	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return count, nil
}

// CountScansByStatus groups scans by lifecycle state
func (r *StatsRepository) CountScansByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []statusCount
	result := r.db.WithContext(ctx).
		Model(&models.Scan{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

// CountVulnerabilitiesBySeverity groups findings by severity
func (r *StatsRepository) CountVulnerabilitiesBySeverity(ctx context.Context) (map[string]int64, error) {
	var rows []severityCount
	result := r.db.WithContext(ctx).
		Model(&models.Vulnerability{}).
		Select("severity, COUNT(*) as count").
		Group("severity").
		Scan(&rows)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Severity] = row.Count
	}

	return counts, nil
}

// RecentScans returns the latest scans up to the given limit
func (r *StatsRepository) RecentScans(ctx context.Context, limit int) ([]models.Scan, error) {
	if limit <= 0 {
		limit = 10
	}

	var scans []models.Scan
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&scans)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	return scans, nil
}

// ScanTrend returns daily scan counts for the trailing window. Days without
// activity are filled with zero so charts render a continuous series.
func (r *StatsRepository) ScanTrend(ctx context.Context, days int) ([]models.TrendPoint, error) {
	if days <= 0 {
		days = 30
	}

	since := time.Now().AddDate(0, 0, -days+1)
	start := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, since.Location())

	var scans []models.Scan
	result := r.db.WithContext(ctx).
		Select("created_at").
		Where("created_at >= ?", start).
		Find(&scans)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, result.Error)
	}

	// Bucket in Go rather than SQL so the query stays portable across
	// the sqlite and postgres drivers.
	byDay := make(map[string]int64, days)
	for _, scan := range scans {
		byDay[scan.CreatedAt.Format("2006-01-02")]++
	}

	points := make([]models.TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		points = append(points, models.TrendPoint{
			Date:  day,
			Count: byDay[day],
		})
	}

	return points, nil
}
