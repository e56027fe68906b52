package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// ErrInvalidRepositoryURL is returned when a repository URL cannot be mapped
// to a github.com owner/name pair.
var ErrInvalidRepositoryURL = errors.New("repository URL is not a recognized github.com URL")

// parseGitHubURL extracts the owner and repository name from a github.com
// clone URL. Both https and ssh forms are accepted; a trailing .git suffix
// is stripped. Enterprise hosts are not supported.
func parseGitHubURL(raw string) (owner, name string, err error) {
	var path string

	switch {
	case strings.HasPrefix(raw, "git@github.com:"):
		path = strings.TrimPrefix(raw, "git@github.com:")
	default:
		u, parseErr := url.Parse(raw)
		if parseErr != nil {
			return "", "", errors.Wrap(ErrInvalidRepositoryURL, raw)
		}
		if u.Host != "github.com" && u.Host != "www.github.com" {
			return "", "", errors.Wrap(ErrInvalidRepositoryURL, raw)
		}
		path = strings.TrimPrefix(u.Path, "/")
	}

	path = strings.TrimSuffix(path, ".git")
	path = strings.TrimSuffix(path, "/")

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Wrap(ErrInvalidRepositoryURL, raw)
	}

	return parts[0], parts[1], nil
}

// newGitHubClient builds a go-github client, authenticated when a token is
// supplied. apiBase overrides the API endpoint for tests.
func newGitHubClient(ctx context.Context, token, apiBase string) *github.Client {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(hc)
	if apiBase != "" {
		if base, err := url.Parse(apiBase); err == nil {
			client.BaseURL = base
		}
	}

	return client
}
