package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/quantasec/pqscan/internal/models"
)

// ListRepositories retrieves all registered repositories
func (c *APIClient) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	var repos []models.Repository
	if err := c.do(ctx, http.MethodGet, APIPathRepositories, nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetRepository retrieves one repository by ID
func (c *APIClient) GetRepository(ctx context.Context, id string) (*models.Repository, error) {
	var repo models.Repository
	if err := c.do(ctx, http.MethodGet, APIPathRepositories+"/"+id, nil, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// CreateRepository registers a new repository
func (c *APIClient) CreateRepository(ctx context.Context, req models.RepositoryCreateRequest) (*models.Repository, error) {
	var repo models.Repository
	if err := c.do(ctx, http.MethodPost, APIPathRepositories, req, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// UpdateRepository applies a partial update to a repository
func (c *APIClient) UpdateRepository(ctx context.Context, id string, req models.RepositoryUpdateRequest) (*models.Repository, error) {
	var repo models.Repository
	if err := c.do(ctx, http.MethodPatch, APIPathRepositories+"/"+id, req, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// DeleteRepository removes a repository together with its scans, findings
// and reports.
func (c *APIClient) DeleteRepository(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, APIPathRepositories+"/"+id, nil, nil)
}

// ListRepositoryVulnerabilities retrieves all findings for a repository
func (c *APIClient) ListRepositoryVulnerabilities(ctx context.Context, id string) ([]models.Vulnerability, error) {
	var vulns []models.Vulnerability
	if err := c.do(ctx, http.MethodGet, APIPathRepositories+"/"+id+"/vulnerabilities", nil, &vulns); err != nil {
		return nil, err
	}
	return vulns, nil
}

// ListBranches enumerates the branches of a remote repository by clone URL,
// before the repository is registered.
func (c *APIClient) ListBranches(ctx context.Context, repoURL string) ([]string, error) {
	path := APIPathRepositories + "/temp/branches?url=" + url.QueryEscape(repoURL)

	var resp models.BranchListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Branches, nil
}
