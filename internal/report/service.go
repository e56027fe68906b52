package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/database/repositories"
)

// Kind selects which stored report family a download targets
type Kind string

const (
	// KindCBOM downloads the cryptographic bill of materials for a scan
	KindCBOM Kind = "cbom"
	// KindVDR downloads the disclosure report for one vulnerability
	KindVDR Kind = "vdr"
)

// Format selects the download rendering
type Format string

const (
	// FormatJSON returns the stored document verbatim
	FormatJSON Format = "json"
	// FormatPDF returns the plain-text degraded rendering. True PDF
	// generation needs a rendering toolchain this service does not carry, so
	// the download is an annotated text file instead of an error.
	FormatPDF Format = "pdf"
)

var (
	// ErrUnknownKind is returned for report kinds outside cbom and vdr
	ErrUnknownKind = errors.New("unknown report kind")

	// ErrUnknownFormat is returned for formats outside json and pdf
	ErrUnknownFormat = errors.New("unknown report format")
)

// Document is a rendered report ready to stream to the client
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service resolves stored CBOM and VDR documents and renders them for
// download.
type Service struct {
	db     database.Database
	logger *logrus.Logger
}

// NewService creates a new report service
func NewService(db database.Database, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// GetReport fetches the report of the given kind for the given key and
// renders it in the requested format. The key is a scan ID for CBOM reports
// and a vulnerability ID for VDR reports; a key with no stored report yields
// repositories.ErrNotFound, never some other row.
func (s *Service) GetReport(ctx context.Context, kind Kind, key string, format Format) (*Document, error) {
	switch format {
	case FormatJSON, FormatPDF:
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}

	content, repoName, err := s.lookup(ctx, kind, key)
	if err != nil {
		return nil, err
	}

	if format == FormatJSON {
		return &Document{
			Filename:    fmt.Sprintf("%s-report-%s.json", kind, key),
			ContentType: "application/json",
			Data:        content,
		}, nil
	}

	s.logger.WithFields(logrus.Fields{
		"kind": kind,
		"key":  key,
	}).Debug("PDF rendering unavailable, serving text fallback")

	return &Document{
		Filename:    fmt.Sprintf("%s-report-%s.txt", kind, key),
		ContentType: "text/plain; charset=utf-8",
		Data:        renderText(kind, key, repoName, content),
	}, nil
}

// lookup resolves the stored document plus the owning repository's name for
// the report header. The name is best effort; a missing repository row does
// not block the download.
func (s *Service) lookup(ctx context.Context, kind Kind, key string) ([]byte, string, error) {
	db := s.db.DB()
	reportStore := repositories.NewReportRepository(db)
	repoStore := repositories.NewRepositoryRepository(db)

	switch kind {
	case KindCBOM:
		cbom, err := reportStore.FindCBOMByScanID(ctx, key)
		if err != nil {
			return nil, "", err
		}
		name := ""
		if repo, err := repoStore.FindByID(ctx, cbom.RepositoryID); err == nil {
			name = repo.Name
		}
		return []byte(cbom.Content), name, nil

	case KindVDR:
		vdr, err := reportStore.FindVDRByVulnerabilityID(ctx, key)
		if err != nil {
			return nil, "", err
		}
		name := ""
		vulnStore := repositories.NewVulnerabilityRepository(db)
		if vuln, err := vulnStore.FindByID(ctx, key); err == nil {
			if repo, err := repoStore.FindByID(ctx, vuln.RepositoryID); err == nil {
				name = repo.Name
			}
		}
		return []byte(vdr.Content), name, nil

	default:
		return nil, "", errors.Wrapf(ErrUnknownKind, "%q", kind)
	}
}

// renderText builds the degraded text rendering: a header identifying the
// report, the pretty-printed document, and a CycloneDX summary when the
// document parses as a BOM.
func renderText(kind Kind, key, repoName string, content []byte) []byte {
	var b strings.Builder

	title := "Cryptographic Bill of Materials"
	if kind == KindVDR {
		title = "Vulnerability Disclosure Report"
	}

	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
	if repoName != "" {
		b.WriteString("Repository: " + repoName + "\n")
	}
	b.WriteString("Reference:  " + key + "\n")
	b.WriteString("Generated:  " + time.Now().UTC().Format(time.RFC3339) + "\n\n")
	b.WriteString("NOTE: PDF rendering is not available on this server.\n")
	b.WriteString("This file contains the report content as formatted text.\n\n")

	if summary := summarizeBOM(content); summary != "" {
		b.WriteString(summary)
		b.WriteString("\n")
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, content, "", "  "); err == nil {
		b.Write(pretty.Bytes())
	} else {
		b.Write(content)
	}
	b.WriteString("\n")

	return []byte(b.String())
}

// summarizeBOM extracts headline counts from a CycloneDX document. Returns
// an empty string when the content is not a parseable BOM.
func summarizeBOM(content []byte) string {
	var bom cdx.BOM
	decoder := cdx.NewBOMDecoder(bytes.NewReader(content), cdx.BOMFileFormatJSON)
	if err := decoder.Decode(&bom); err != nil {
		return ""
	}
	if bom.BOMFormat != cdx.BOMFormat {
		return ""
	}

	var b strings.Builder
	b.WriteString("Summary\n-------\n")
	if bom.SpecVersion != 0 {
		b.WriteString(fmt.Sprintf("CycloneDX spec version: %s\n", bom.SpecVersion))
	}

	components := 0
	if bom.Components != nil {
		components = len(*bom.Components)
	}
	b.WriteString(fmt.Sprintf("Components: %d\n", components))

	if bom.Vulnerabilities != nil && len(*bom.Vulnerabilities) > 0 {
		b.WriteString(fmt.Sprintf("Vulnerabilities: %d\n", len(*bom.Vulnerabilities)))

		bySeverity := make(map[string]int)
		for _, v := range *bom.Vulnerabilities {
			if v.Ratings == nil {
				continue
			}
			for _, r := range *v.Ratings {
				if r.Severity != "" {
					bySeverity[string(r.Severity)]++
					break
				}
			}
		}
		for _, sev := range []string{"critical", "high", "medium", "low", "info"} {
			if n, ok := bySeverity[sev]; ok {
				b.WriteString(fmt.Sprintf("  %s: %d\n", sev, n))
			}
		}
	}

	return b.String()
}
