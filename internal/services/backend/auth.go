package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/amaumene/cinematheque/internal/models"
)

// LoginRequest is the body of a login call
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// LoginResponse is the reply to a login call. Success is false with a
// Message when the credentials are refused.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Login exchanges credentials for a session token.
// A refusal is reported in the response, not as an error; errors are transport failures.
func (c *Client) Login(ctx context.Context, username, password string, remember bool) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.doRequest(ctx, "login", http.MethodPost, "/auth/login", givenToken, "", LoginRequest{
		Username:   username,
		Password:   password,
		RememberMe: remember,
	}, &resp)

	var apiErr *models.APIError
	if errors.As(err, &apiErr) && errors.Is(err, models.ErrAuth) {
		return &LoginResponse{Success: false, Message: apiErr.Detail}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Verify checks that a token is still accepted by the backend
func (c *Client) Verify(ctx context.Context, token string) error {
	if token == "" {
		return models.ErrAuth
	}
	return c.doRequest(ctx, "verify", http.MethodGet, "/auth/verify", givenToken, token, nil, nil)
}

// Logout invalidates a token on the backend
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doRequest(ctx, "logout", http.MethodPost, "/auth/logout", givenToken, token, nil, nil)
}
