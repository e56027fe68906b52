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

func TestIntegrationEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)
	token := loginTestUser(t, server)

	w := doRequest(t, server, http.MethodPost, "/api/v1/integrations", gin.H{
		"name":    "semgrep-prod",
		"type":    "semgrep",
		"api_key": "sg_secret",
		"config":  gin.H{"ruleset": "pqc-crypto"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var integration models.Integration
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &integration))
	require.NotEmpty(t, integration.ID)
	assert.True(t, integration.IsActive)
	assert.NotContains(t, w.Body.String(), "sg_secret")

	t.Run("get returns the integration", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/integrations/"+integration.ID, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Integration
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "semgrep-prod", got.Name)
	})

	t.Run("unknown id yields 404", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/integrations/no-such-id", nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list returns all integrations", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/integrations", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var integrations []models.Integration
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &integrations))
		assert.Len(t, integrations, 1)
	})

	t.Run("scan against the integration bumps last_used", func(t *testing.T) {
		repo := createTestRepository(t, server, token, "scanned-with-semgrep")

		w := doRequest(t, server, http.MethodPost, "/api/v1/scans", gin.H{
			"repository_id":  repo.ID,
			"integration_id": integration.ID,
		}, token)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(t, server, http.MethodGet, "/api/v1/integrations/"+integration.ID, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Integration
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.NotNil(t, got.LastUsed)
	})

	t.Run("scan against unknown integration is rejected", func(t *testing.T) {
		repo := createTestRepository(t, server, token, "no-integration")

		w := doRequest(t, server, http.MethodPost, "/api/v1/scans", gin.H{
			"repository_id":  repo.ID,
			"integration_id": "no-such-integration",
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
