package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/quantasec/pqscan/internal/models"
)

func findingWithVDR(t *testing.T, server *Server, token, scanID string) *models.Vulnerability {
	t.Helper()

	w := doRequest(t, server, http.MethodGet, "/api/v1/scans/"+scanID+"/vulnerabilities", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var vulns []models.Vulnerability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vulns))
	for i := range vulns {
		if vulns[i].Title == "RSA-2048 key exchange" {
			return &vulns[i]
		}
	}
	t.Fatal("expected finding not present")
	return nil
}

func TestCBOMReportDownload(t *testing.T) {
	server, _ := setupTestServer(t)
	token := loginTestUser(t, server)
	repo := createTestRepository(t, server, token, "payments-api")
	scan := completeScanWithFindings(t, server, token, repo.ID)

	t.Run("json download returns the stored document verbatim", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/cbom-reports/"+scan.ID, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=cbom-report-"+scan.ID+".json", w.Header().Get("Content-Disposition"))
		assert.JSONEq(t, testCBOMDoc, w.Body.String())
	})

	t.Run("explicit json format behaves the same", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/cbom-reports/"+scan.ID+"/json", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, testCBOMDoc, w.Body.String())
	})

	t.Run("pdf format degrades to a text rendering", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/cbom-reports/"+scan.ID+"/pdf", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=cbom-report-"+scan.ID+".txt", w.Header().Get("Content-Disposition"))

		body := w.Body.String()
		assert.Contains(t, body, "NOTE: PDF rendering is not available on this server.")
		assert.Contains(t, body, "payments-api")
		assert.Contains(t, body, "rsa-2048")
	})

	t.Run("unknown format yields 400", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/cbom-reports/"+scan.ID+"/docx", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown scan yields 404", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/cbom-reports/no-such-scan", nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error": "resource not found"}`, w.Body.String())
	})
}

func TestVDRReportDownload(t *testing.T) {
	server, _ := setupTestServer(t)
	token := loginTestUser(t, server)
	repo := createTestRepository(t, server, token, "tls-proxy")
	scan := completeScanWithFindings(t, server, token, repo.ID)
	vuln := findingWithVDR(t, server, token, scan.ID)

	t.Run("json download returns the stored document verbatim", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/vdr-reports/"+vuln.ID, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, "attachment; filename=vdr-report-"+vuln.ID+".json", w.Header().Get("Content-Disposition"))
		assert.JSONEq(t, testVDRDoc, w.Body.String())
	})

	t.Run("pdf format degrades to a text rendering", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/vdr-reports/"+vuln.ID+"/pdf", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "NOTE: PDF rendering is not available on this server.")
	})

	t.Run("scan id is not a valid VDR key", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/vdr-reports/"+scan.ID, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("finding without a VDR yields 404", func(t *testing.T) {
		wVulns := doRequest(t, server, http.MethodGet, "/api/v1/scans/"+scan.ID+"/vulnerabilities", nil, token)
		require.Equal(t, http.StatusOK, wVulns.Code)

		var vulns []models.Vulnerability
		require.NoError(t, json.Unmarshal(wVulns.Body.Bytes(), &vulns))
		for _, v := range vulns {
			if v.ID == vuln.ID {
				continue
			}
			w := doRequest(t, server, http.MethodGet, "/api/v1/vdr-reports/"+v.ID, nil, token)
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
	})
}
