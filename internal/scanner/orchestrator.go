package scanner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sentinel errors for scan lifecycle violations
var (
	// ErrValidation is returned for malformed scan requests
	ErrValidation = errors.New("scan validation failed")

	// ErrInvalidState is returned for illegal state-machine transitions.
	// These are programming errors on the caller's side and are surfaced,
	// never silently retried.
	ErrInvalidState = errors.New("invalid scan state transition")
)

// Finding is one vulnerability reported by the external scanner together
// with its optional disclosure document.
type Finding struct {
	Severity       models.Severity
	Title          string
	Description    string
	FilePath       string
	LineNumber     int
	Algorithm      string
	Recommendation string
	VDR            json.RawMessage
}

// CreateScanInput carries the parameters for launching a scan
type CreateScanInput struct {
	RepositoryID  string
	Branch        string
	IntegrationID string
	Config        models.ScanConfig
}

// Orchestrator owns the scan state machine: pending → scanning →
// {completed | failed}. Every transition runs in a single transaction so a
// scan row can never be observed mid-transition. The orchestrator does not
// invoke the external analysis tools itself; they report back through
// AdvanceProgress, CompleteScan and FailScan.
type Orchestrator struct {
	db     database.Database
	logger *logrus.Logger
}

// NewOrchestrator creates a new scan orchestrator
func NewOrchestrator(db database.Database, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		db:     db,
		logger: logger,
	}
}

// CreateScan validates the request, persists a pending scan and derives an
// opaque job handle for progress polling. The handle is distinct from the
// scan ID. The repository must exist at creation time; if an integration is
// referenced it must exist as well and its last-used marker is bumped.
func (o *Orchestrator) CreateScan(ctx context.Context, in CreateScanInput) (*models.Scan, string, error) {
	if in.RepositoryID == "" {
		return nil, "", errors.Wrap(ErrValidation, "repository_id is required")
	}

	branch := in.Branch
	if branch == "" {
		branch = "main"
	}

	var scan *models.Scan
	err := o.db.Transaction(func(tx *gorm.DB) error {
		repoStore := repositories.NewRepositoryRepository(tx)
		exists, err := repoStore.Exists(ctx, in.RepositoryID)
		if err != nil {
			return err
		}
		if !exists {
			return errors.Wrapf(ErrValidation, "repository %s does not exist", in.RepositoryID)
		}

		if in.IntegrationID != "" {
			integrationStore := repositories.NewIntegrationRepository(tx)
			if err := integrationStore.TouchLastUsed(ctx, in.IntegrationID, time.Now()); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return errors.Wrapf(ErrValidation, "integration %s does not exist", in.IntegrationID)
				}
				return err
			}
		}

		scan = &models.Scan{
			RepositoryID:  in.RepositoryID,
			Branch:        branch,
			Status:        models.ScanStatusPending,
			Progress:      0,
			TotalFiles:    0,
			IntegrationID: in.IntegrationID,
			ScanConfig:    datatypes.NewJSONType(in.Config),
			CreatedAt:     time.Now(),
		}
		return repositories.NewScanRepository(tx).Create(ctx, scan)
	})
	if err != nil {
		return nil, "", err
	}

	jobID := "scan-job-" + uuid.NewString()

	o.logger.WithFields(logrus.Fields{
		"scan_id":       scan.ID,
		"repository_id": scan.RepositoryID,
		"branch":        scan.Branch,
		"job_id":        jobID,
	}).Info("Scan created")

	return scan, jobID, nil
}

// GetScan retrieves one scan
func (o *Orchestrator) GetScan(ctx context.Context, id string) (*models.Scan, error) {
	return repositories.NewScanRepository(o.db.DB()).FindByID(ctx, id)
}

// ListScans retrieves scans matching the filter. Result sets are unbounded;
// callers paginate on their side if they need to.
func (o *Orchestrator) ListScans(ctx context.Context, filter repositories.ScanFilter) ([]models.Scan, error) {
	return repositories.NewScanRepository(o.db.DB()).List(ctx, filter)
}

// StartScan transitions a pending scan to scanning and stamps the start time
func (o *Orchestrator) StartScan(ctx context.Context, id string) (*models.Scan, error) {
	var scan *models.Scan
	err := o.db.Transaction(func(tx *gorm.DB) error {
		store := repositories.NewScanRepository(tx)
		current, err := store.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if current.Status != models.ScanStatusPending {
			return errors.Wrapf(ErrInvalidState, "cannot start scan in status %s", current.Status)
		}

		now := time.Now()
		if err := store.Updates(ctx, id, map[string]interface{}{
			"status":     models.ScanStatusScanning,
			"started_at": now,
		}); err != nil {
			return err
		}

		current.Status = models.ScanStatusScanning
		current.StartedAt = &now
		scan = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.WithField("scan_id", id).Info("Scan started")
	return scan, nil
}

// AdvanceProgress records a progress signal from the external scanner.
// Only running scans accept progress. Out-of-range values are clamped to
// [0,100] rather than rejected, and regressions are ignored, so the stored
// value is monotonically non-decreasing until the scan terminates.
func (o *Orchestrator) AdvanceProgress(ctx context.Context, id string, progress int) (*models.Scan, error) {
	clamped := clampProgress(progress)

	var scan *models.Scan
	err := o.db.Transaction(func(tx *gorm.DB) error {
		store := repositories.NewScanRepository(tx)
		current, err := store.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if current.Status != models.ScanStatusScanning {
			return errors.Wrapf(ErrInvalidState, "cannot advance progress of scan in status %s", current.Status)
		}

		if clamped > current.Progress {
			if err := store.Updates(ctx, id, map[string]interface{}{
				"progress": clamped,
			}); err != nil {
				return err
			}
			current.Progress = clamped
		}

		scan = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return scan, nil
}

// CompleteScan transitions a running scan to completed and persists its
// outputs in the same transaction: vulnerability rows, their optional VDR
// documents, the optional CBOM document and the repository's last-scan
// marker. Re-invoking on an already-completed scan is a no-op so retried
// completion callbacks never duplicate findings.
func (o *Orchestrator) CompleteScan(ctx context.Context, id string, totalFiles int, findings []Finding, cbom json.RawMessage) (*models.Scan, error) {
	var scan *models.Scan
	err := o.db.Transaction(func(tx *gorm.DB) error {
		store := repositories.NewScanRepository(tx)
		current, err := store.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if current.Status == models.ScanStatusCompleted {
			scan = current
			return nil
		}
		if current.Status != models.ScanStatusScanning {
			return errors.Wrapf(ErrInvalidState, "cannot complete scan in status %s", current.Status)
		}

		now := time.Now()
		if err := store.Updates(ctx, id, map[string]interface{}{
			"status":       models.ScanStatusCompleted,
			"progress":     100,
			"total_files":  totalFiles,
			"completed_at": now,
		}); err != nil {
			return err
		}

		if err := o.persistFindings(ctx, tx, current, findings, now); err != nil {
			return err
		}

		if len(cbom) > 0 {
			reportStore := repositories.NewReportRepository(tx)
			if err := reportStore.CreateCBOM(ctx, &models.CBOMReport{
				ScanID:       current.ID,
				RepositoryID: current.RepositoryID,
				Content:      datatypes.JSON(cbom),
				CreatedAt:    now,
			}); err != nil {
				return err
			}
		}

		repoStore := repositories.NewRepositoryRepository(tx)
		if err := repoStore.TouchLastScan(ctx, current.RepositoryID, now); err != nil {
			// The repository may have been cascade-deleted between the scan
			// run and its completion callback; the scan row is gone with it,
			// so surface the inconsistency.
			return err
		}

		current.Status = models.ScanStatusCompleted
		current.Progress = 100
		current.TotalFiles = totalFiles
		current.CompletedAt = &now
		scan = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.WithFields(logrus.Fields{
		"scan_id":     id,
		"total_files": totalFiles,
		"findings":    len(findings),
	}).Info("Scan completed")

	return scan, nil
}

// persistFindings stores the vulnerability rows plus their VDR documents
func (o *Orchestrator) persistFindings(ctx context.Context, tx *gorm.DB, scan *models.Scan, findings []Finding, now time.Time) error {
	if len(findings) == 0 {
		return nil
	}

	vulns := make([]models.Vulnerability, len(findings))
	for i, f := range findings {
		vulns[i] = models.Vulnerability{
			// Assigned here so VDR rows can reference the finding within
			// the same transaction.
			ID:             uuid.NewString(),
			RepositoryID:   scan.RepositoryID,
			ScanID:         scan.ID,
			Severity:       f.Severity,
			Title:          f.Title,
			Description:    f.Description,
			FilePath:       f.FilePath,
			LineNumber:     f.LineNumber,
			Algorithm:      f.Algorithm,
			Recommendation: f.Recommendation,
			CreatedAt:      now,
		}
	}

	vulnStore := repositories.NewVulnerabilityRepository(tx)
	if err := vulnStore.CreateBatch(ctx, vulns); err != nil {
		return err
	}

	reportStore := repositories.NewReportRepository(tx)
	for i, f := range findings {
		if len(f.VDR) == 0 {
			continue
		}
		if err := reportStore.CreateVDR(ctx, &models.VDRReport{
			VulnerabilityID: vulns[i].ID,
			Content:         datatypes.JSON(f.VDR),
			CreatedAt:       now,
		}); err != nil {
			return err
		}
	}

	return nil
}

// FailScan transitions a pending or running scan to failed. External
// scanner failures are expected to arrive through this path rather than as
// thrown errors; a scan that already terminated cannot fail again.
func (o *Orchestrator) FailScan(ctx context.Context, id string, errorMessage string) (*models.Scan, error) {
	if errorMessage == "" {
		errorMessage = "scan failed"
	}

	var scan *models.Scan
	err := o.db.Transaction(func(tx *gorm.DB) error {
		store := repositories.NewScanRepository(tx)
		current, err := store.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if current.Status.Terminal() {
			return errors.Wrapf(ErrInvalidState, "cannot fail scan in status %s", current.Status)
		}

		now := time.Now()
		if err := store.Updates(ctx, id, map[string]interface{}{
			"status":        models.ScanStatusFailed,
			"completed_at":  now,
			"error_message": errorMessage,
		}); err != nil {
			return err
		}

		current.Status = models.ScanStatusFailed
		current.CompletedAt = &now
		current.ErrorMessage = errorMessage
		scan = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.WithFields(logrus.Fields{
		"scan_id": id,
		"error":   errorMessage,
	}).Warn("Scan failed")

	return scan, nil
}

// clampProgress forces a progress signal into [0,100]. Noisy external
// scanners occasionally report out-of-range values; tolerating them beats
// failing the whole progress callback.
func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
