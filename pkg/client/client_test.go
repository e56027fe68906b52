package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/quantasec/pqscan/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *APIClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func TestNewClientOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewClient()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", c.config.BaseURL)
	})

	t.Run("invalid option fails construction", func(t *testing.T) {
		_, err := NewClient(WithBaseURL(""))
		assert.Error(t, err)

		_, err = NewClient(WithTimeout(-time.Second))
		assert.Error(t, err)

		_, err = NewClient(WithUserAgent(""))
		assert.Error(t, err)
	})

	t.Run("headers and token are applied", func(t *testing.T) {
		var gotAuth, gotCustom string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotCustom = r.Header.Get("X-Team")
			_, _ = w.Write([]byte(`{"status": "ok"}`))
		})

		srv := httptest.NewServer(handler)
		defer srv.Close()

		c, err := NewClient(
			WithBaseURL(srv.URL),
			WithAccessToken("abc123"),
			WithHeader("X-Team", "appsec"),
		)
		require.NoError(t, err)

		_, err = c.Health(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc123", gotAuth)
		assert.Equal(t, "appsec", gotCustom)
	})
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusInternalServerError, ErrServerError},
	}

	for _, tc := range cases {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error": "boom", "details": "extra context"}`))
		}))

		_, err := c.GetScan(context.Background(), "any")
		require.Error(t, err)
		assert.ErrorIs(t, err, tc.want)
		assert.Contains(t, err.Error(), "boom")
		assert.Contains(t, err.Error(), "extra context")
	}
}

func TestLoginStoresToken(t *testing.T) {
	var sawAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.LoginResponse{Token: "issued-token"})
	})
	mux.HandleFunc("/api/v1/user/me", func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(models.User{Email: "a@b.c"})
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	resp, err := c.Login(ctx, "a@b.c", "secret pass")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", resp.Token)

	user, err := c.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
	assert.Equal(t, "Bearer issued-token", sawAuth)
}

func TestListScansQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := c.ListScans(context.Background(), ScanListOptions{
		RepositoryID: "repo-1",
		Status:       models.ScanStatusScanning,
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "repository_id=repo-1")
	assert.Contains(t, gotQuery, "status=scanning")
}

func TestDownloadReport(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/cbom-reports/scan-1/pdf", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=cbom-report-scan-1.txt")
		_, _ = w.Write([]byte("rendered report"))
	}))

	doc, err := c.DownloadCBOM(context.Background(), "scan-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "cbom-report-scan-1.txt", doc.Filename)
	assert.Equal(t, "text/plain; charset=utf-8", doc.ContentType)
	assert.Equal(t, "rendered report", string(doc.Data))
}

func TestFilenameFromDisposition(t *testing.T) {
	assert.Equal(t, "a.json", filenameFromDisposition("attachment; filename=a.json"))
	assert.Equal(t, "a b.txt", filenameFromDisposition(`attachment; filename="a b.txt"`))
	assert.Equal(t, "", filenameFromDisposition("inline"))
}
