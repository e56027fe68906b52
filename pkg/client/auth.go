package client

import (
	"context"
	"net/http"

	"github.com/quantasec/pqscan/internal/models"
)

// Login authenticates against the server and stores the issued token for
// subsequent requests.
func (c *APIClient) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.do(ctx, http.MethodPost, APIPathAuthLogin, models.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	c.SetAccessToken(resp.Token)
	return &resp, nil
}

// Register creates a new user account
func (c *APIClient) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, APIPathAuthRegister, models.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     name,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCurrentUser fetches the authenticated user's account
func (c *APIClient) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, APIPathUserMe, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
