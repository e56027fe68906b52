package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/quantasec/pqscan/internal/models"
)

func createTestRepository(t *testing.T, server *Server, token, name string) *models.Repository {
	t.Helper()

	w := doRequest(t, server, http.MethodPost, "/api/v1/repositories", gin.H{
		"name":      name,
		"url":       "https://github.com/example/" + name,
		"provider":  "github",
		"languages": []string{"go", "python"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var repo models.Repository
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repo))
	require.NotEmpty(t, repo.ID)
	return &repo
}

func TestRepositoryCRUD(t *testing.T) {
	server, _ := setupTestServer(t)
	token := loginTestUser(t, server)

	repo := createTestRepository(t, server, token, "payments-api")

	t.Run("list includes the repository", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/repositories", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var repos []models.Repository
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repos))
		require.Len(t, repos, 1)
		assert.Equal(t, repo.ID, repos[0].ID)
	})

	t.Run("get returns the repository", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/repositories/"+repo.ID, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Repository
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "payments-api", got.Name)
		assert.Equal(t, []string{"go", "python"}, []string(got.Languages))
	})

	t.Run("get unknown id yields 404 envelope", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/repositories/no-such-id", nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error": "resource not found"}`, w.Body.String())
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/v1/repositories", gin.H{
			"name":     "payments-api",
			"url":      "https://github.com/example/other",
			"provider": "github",
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "name already exists"}`, w.Body.String())
	})

	t.Run("patch updates only provided fields", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPatch, "/api/v1/repositories/"+repo.ID, gin.H{
			"description": "handles card payments",
		}, token)
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Repository
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "handles card payments", got.Description)
		assert.Equal(t, "payments-api", got.Name)
	})

	t.Run("empty patch is rejected", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPatch, "/api/v1/repositories/"+repo.ID, gin.H{}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid provider is rejected", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/v1/repositories", gin.H{
			"name":     "svn-era",
			"url":      "https://example.com/svn",
			"provider": "sourceforge",
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRepositoryCascadeDelete(t *testing.T) {
	server, tdb := setupTestServer(t)
	token := loginTestUser(t, server)

	repo := createTestRepository(t, server, token, "legacy-crypto")
	scan := completeScanWithFindings(t, server, token, repo.ID)

	w := doRequest(t, server, http.MethodDelete, "/api/v1/repositories/"+repo.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": "`+repo.ID+`"}`, w.Body.String())

	t.Run("scan rows are gone", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/scans/"+scan.ID, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("reports and findings are gone from the store", func(t *testing.T) {
		var vulns, cboms, vdrs int64
		require.NoError(t, tdb.DB().Model(&models.Vulnerability{}).Count(&vulns).Error)
		require.NoError(t, tdb.DB().Model(&models.CBOMReport{}).Count(&cboms).Error)
		require.NoError(t, tdb.DB().Model(&models.VDRReport{}).Count(&vdrs).Error)
		assert.Zero(t, vulns)
		assert.Zero(t, cboms)
		assert.Zero(t, vdrs)
	})

	t.Run("deleting again yields 404", func(t *testing.T) {
		w := doRequest(t, server, http.MethodDelete, "/api/v1/repositories/"+repo.ID, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRepositoryVulnerabilities(t *testing.T) {
	server, _ := setupTestServer(t)
	token := loginTestUser(t, server)

	repo := createTestRepository(t, server, token, "crypto-utils")
	completeScanWithFindings(t, server, token, repo.ID)

	t.Run("returns findings for the repository", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/repositories/"+repo.ID+"/vulnerabilities", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var vulns []models.Vulnerability
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vulns))
		require.Len(t, vulns, 2)
	})

	t.Run("unknown repository yields 404", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/repositories/no-such-id/vulnerabilities", nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRepositoryListBranchesValidation(t *testing.T) {
	server, _ := setupTestServer(t)
	token := loginTestUser(t, server)

	t.Run("missing url parameter", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/repositories/temp/branches", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unsupported host", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/repositories/temp/branches?url=https://gitlab.com/a/b", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
