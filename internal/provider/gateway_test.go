package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testDatabase struct {
	db *gorm.DB
}

func (t *testDatabase) DB() *gorm.DB   { return t.db }
func (t *testDatabase) Connect() error { return nil }
func (t *testDatabase) Close() error   { return nil }
func (t *testDatabase) Ping() error    { return nil }

func (t *testDatabase) Migrate(models ...interface{}) error {
	return t.db.AutoMigrate(models...)
}

func (t *testDatabase) Transaction(fn func(tx *gorm.DB) error) error {
	return t.db.Transaction(fn)
}

func setupGatewayTest(t *testing.T, handler http.Handler) (*Gateway, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	tdb := &testDatabase{db: db}
	require.NoError(t, tdb.Migrate(&models.ProviderToken{}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	apiBase := ""
	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		apiBase = server.URL + "/"
	}

	return NewGateway(tdb, log, 5*time.Second, apiBase), db
}

func storeToken(t *testing.T, db *gorm.DB, name, accessToken string, active bool) *models.ProviderToken {
	t.Helper()

	token := &models.ProviderToken{
		UserID:      "user-1",
		Name:        name,
		Provider:    models.ProviderGitHub,
		AccessToken: accessToken,
		IsActive:    active,
	}
	require.NoError(t, db.Create(token).Error)
	return token
}

func TestGateway_TestToken(t *testing.T) {
	t.Run("valid stored credential", func(t *testing.T) {
		var gotAuth string
		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("X-OAuth-Scopes", "repo, read:org")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"login":"octocat","id":1}`)
		})

		gw, db := setupGatewayTest(t, mux)
		token := storeToken(t, db, "ci-token", "ghp_testtoken", true)

		result, err := gw.TestToken(context.Background(), token.ID)
		require.NoError(t, err)

		assert.True(t, result.Valid)
		assert.Equal(t, "octocat", result.Username)
		assert.Contains(t, result.Message, "repo")
		assert.Contains(t, gotAuth, "ghp_testtoken")
	})

	t.Run("rejected credential yields a negative result", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Bad credentials"}`)
		})

		gw, db := setupGatewayTest(t, mux)
		token := storeToken(t, db, "revoked", "ghp_revoked", true)

		result, err := gw.TestToken(context.Background(), token.ID)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Empty(t, result.Username)
	})

	t.Run("unknown token id", func(t *testing.T) {
		gw, _ := setupGatewayTest(t, nil)

		_, err := gw.TestToken(context.Background(), "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("server errors surface as upstream failures", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		gw, db := setupGatewayTest(t, mux)
		token := storeToken(t, db, "flaky", "ghp_flaky", true)

		_, err := gw.TestToken(context.Background(), token.ID)
		assert.ErrorIs(t, err, ErrUpstream)
	})
}

func TestGateway_CheckCredential(t *testing.T) {
	t.Run("unsupported provider", func(t *testing.T) {
		gw, _ := setupGatewayTest(t, nil)

		_, err := gw.CheckCredential(context.Background(), models.ProviderGitLab, "token")
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
	})
}

func TestGateway_ListBranches(t *testing.T) {
	branchesJSON := `[{"name":"main"},{"name":"develop"},{"name":"pqc-migration"}]`
	repoURL := "https://github.com/example/crypto-service.git"

	t.Run("lists branches and attaches the stored credential", func(t *testing.T) {
		var gotAuth string
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/example/crypto-service/branches", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, branchesJSON)
		})

		gw, db := setupGatewayTest(t, mux)
		storeToken(t, db, "ci-token", "ghp_stored", true)

		branches, err := gw.ListBranches(context.Background(), repoURL)
		require.NoError(t, err)

		assert.Equal(t, []string{"main", "develop", "pqc-migration"}, branches)
		assert.Contains(t, gotAuth, "ghp_stored")
	})

	t.Run("works unauthenticated when no token is stored", func(t *testing.T) {
		var gotAuth string
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/example/crypto-service/branches", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, branchesJSON)
		})

		gw, _ := setupGatewayTest(t, mux)

		branches, err := gw.ListBranches(context.Background(), repoURL)
		require.NoError(t, err)
		assert.Len(t, branches, 3)
		assert.Empty(t, gotAuth)
	})

	t.Run("inactive tokens are not attached", func(t *testing.T) {
		var gotAuth string
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/example/crypto-service/branches", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, branchesJSON)
		})

		gw, db := setupGatewayTest(t, mux)
		storeToken(t, db, "revoked", "ghp_revoked", false)

		_, err := gw.ListBranches(context.Background(), repoURL)
		require.NoError(t, err)
		assert.Empty(t, gotAuth)
	})

	t.Run("remote 404 maps to not found", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		})

		gw, _ := setupGatewayTest(t, mux)

		_, err := gw.ListBranches(context.Background(), repoURL)
		assert.ErrorIs(t, err, ErrRemoteNotFound)
	})

	t.Run("remote 403 maps to forbidden", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"rate limited"}`)
		})

		gw, _ := setupGatewayTest(t, mux)

		_, err := gw.ListBranches(context.Background(), repoURL)
		assert.ErrorIs(t, err, ErrRemoteForbidden)
	})

	t.Run("non-github URL", func(t *testing.T) {
		gw, _ := setupGatewayTest(t, nil)

		_, err := gw.ListBranches(context.Background(), "https://gitlab.com/example/repo")
		assert.ErrorIs(t, err, ErrInvalidRepositoryURL)
	})
}

func TestParseGitHubURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https form", "https://github.com/example/repo", "example", "repo", false},
		{"https with .git", "https://github.com/example/repo.git", "example", "repo", false},
		{"trailing slash", "https://github.com/example/repo/", "example", "repo", false},
		{"www host", "https://www.github.com/example/repo", "example", "repo", false},
		{"ssh form", "git@github.com:example/repo.git", "example", "repo", false},
		{"other host", "https://gitlab.com/example/repo", "", "", true},
		{"missing name", "https://github.com/example", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, name, err := parseGitHubURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRepositoryURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, name)
		})
	}
}
