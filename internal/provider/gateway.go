package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/models"
)

// Sentinel errors for provider calls
var (
	// ErrUnsupportedProvider is returned for providers without an API client
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrRemoteNotFound is returned when the provider reports the repository
	// does not exist or the credential cannot see it.
	ErrRemoteNotFound = errors.New("remote repository not found")

	// ErrRemoteForbidden is returned when the provider rejects the credential
	ErrRemoteForbidden = errors.New("remote access forbidden")

	// ErrUpstream is returned for provider failures outside the mapped
	// status codes, including network errors and timeouts.
	ErrUpstream = errors.New("provider request failed")
)

// Gateway is the single egress point for Git hosting API calls. Every call
// runs under a bounded deadline so a slow provider cannot stall a request
// handler indefinitely.
type Gateway struct {
	db      database.Database
	logger  *logrus.Logger
	timeout time.Duration

	// apiBase overrides the provider API endpoint. Empty means api.github.com.
	apiBase string
}

// NewGateway creates a new provider gateway
func NewGateway(db database.Database, logger *logrus.Logger, timeout time.Duration, apiBase string) *Gateway {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Gateway{
		db:      db,
		logger:  logger,
		timeout: timeout,
		apiBase: apiBase,
	}
}

// TestToken checks a stored credential against the provider API. A single
// call, no retry, and the result is never cached; the caller sees the
// provider's current answer.
func (g *Gateway) TestToken(ctx context.Context, tokenID string) (*models.TokenTestResponse, error) {
	store := repositories.NewProviderTokenRepository(g.db.DB())

	token, err := store.FindByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	result, err := g.CheckCredential(ctx, token.Provider, token.AccessToken)
	if err != nil {
		return nil, err
	}

	if result.Valid {
		// Best effort; the check already answered.
		if err := store.TouchUpdated(ctx, token.ID); err != nil {
			g.logger.WithError(err).Debug("Failed to record token use")
		}
	}

	return result, nil
}

// CheckCredential verifies a raw credential against the provider API.
// Rejected credentials yield a negative result rather than an error; only
// transport level failures surface as errors.
func (g *Gateway) CheckCredential(ctx context.Context, prov models.RepositoryProvider, accessToken string) (*models.TokenTestResponse, error) {
	if prov != models.ProviderGitHub {
		return nil, errors.Wrapf(ErrUnsupportedProvider, "%s", prov)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client := newGitHubClient(ctx, accessToken, g.apiBase)
	user, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return &models.TokenTestResponse{
				Valid:   false,
				Message: "provider rejected the credential",
			}, nil
		}
		g.logger.WithError(err).Warn("Token test call failed")
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}

	result := &models.TokenTestResponse{
		Valid:    true,
		Username: user.GetLogin(),
	}
	if scopes := resp.Header.Get("X-OAuth-Scopes"); scopes != "" {
		result.Message = "granted scopes: " + scopes
	}

	return result, nil
}

// ListBranches lists the branch names of a repository by its clone URL.
// Only github.com URLs are accepted. The most recently updated active
// credential for the provider is attached when one exists; otherwise the
// call goes out unauthenticated, which still works for public repositories.
func (g *Gateway) ListBranches(ctx context.Context, rawURL string) ([]string, error) {
	owner, name, err := parseGitHubURL(rawURL)
	if err != nil {
		return nil, err
	}

	var token string
	tokenStore := repositories.NewProviderTokenRepository(g.db.DB())
	stored, err := tokenStore.FindActiveByProvider(ctx, models.ProviderGitHub)
	switch {
	case err == nil:
		if !stored.Expired() {
			token = stored.AccessToken
		}
	case errors.Is(err, repositories.ErrNotFound):
		// No stored credential; proceed unauthenticated.
	default:
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client := newGitHubClient(ctx, token, g.apiBase)

	var branches []string
	opts := github.ListOptions{PerPage: 100}
	for {
		page, resp, err := client.Repositories.ListBranches(ctx, owner, name, &github.BranchListOptions{
			ListOptions: opts,
		})
		if err != nil {
			return nil, g.mapGitHubError(owner, name, resp, err)
		}

		for _, b := range page {
			branches = append(branches, b.GetName())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return branches, nil
}

// mapGitHubError folds a go-github call failure into the gateway's error
// taxonomy.
func (g *Gateway) mapGitHubError(owner, name string, resp *github.Response, err error) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return errors.Wrapf(ErrRemoteNotFound, "%s/%s", owner, name)
		case http.StatusForbidden, http.StatusUnauthorized:
			return errors.Wrapf(ErrRemoteForbidden, "%s/%s", owner, name)
		}
	}

	g.logger.WithError(err).WithFields(logrus.Fields{
		"owner": owner,
		"repo":  name,
	}).Warn("Provider call failed")

	if strings.Contains(err.Error(), context.DeadlineExceeded.Error()) {
		return errors.Wrap(ErrUpstream, "provider deadline exceeded")
	}
	return errors.Wrap(ErrUpstream, err.Error())
}
