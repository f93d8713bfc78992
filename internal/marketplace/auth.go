package marketplace

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/playtrade/storefront/internal/normalize"
)

// LoginResult carries what the auth endpoint returns on success. The refresh
// token is only ever forwarded into its cookie, never stored elsewhere.
type LoginResult struct {
	Message      string
	AccessToken  string
	RefreshToken string
}

// RegisterRequest mirrors the registration form.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Login authenticates with username/password and returns the issued tokens.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}
	raw, err := c.request(ctx, http.MethodPost, "/auth/login", payload, false)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Message:      normalize.Message(raw),
		AccessToken:  gjson.GetBytes(raw, "result.access_token").String(),
		RefreshToken: gjson.GetBytes(raw, "result.refresh_token").String(),
	}, nil
}

// Register creates a new user. Tokens in the response are deliberately not
// returned; registration does not log the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	raw, err := c.request(ctx, http.MethodPost, "/auth/register", req, false)
	if err != nil {
		return "", err
	}
	return normalize.Message(raw), nil
}

// ForgotPassword requests a reset email for the given address.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	payload := map[string]string{"email": email}
	raw, err := c.request(ctx, http.MethodPost, "/auth/forgot-password", payload, false)
	if err != nil {
		return "", err
	}
	return normalize.Message(raw), nil
}

// ResetPassword completes a reset flow with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword, confirm string) (string, error) {
	payload := map[string]string{
		"new_password":         newPassword,
		"confirm_new_password": confirm,
	}
	raw, err := c.request(ctx, http.MethodPost, "/auth/reset-password/"+url.PathEscape(token), payload, false)
	if err != nil {
		return "", err
	}
	return normalize.Message(raw), nil
}

// ChangePassword changes the authenticated user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) (string, error) {
	payload := map[string]string{
		"old_password":         oldPassword,
		"new_password":         newPassword,
		"confirm_new_password": confirm,
	}
	raw, err := c.request(ctx, http.MethodPost, "/auth/change-password", payload, true)
	if err != nil {
		return "", err
	}
	return normalize.Message(raw), nil
}

// Profile fetches the authenticated user's profile record.
func (c *Client) Profile(ctx context.Context) (map[string]any, error) {
	raw, err := c.request(ctx, http.MethodGet, "/auth/profile", nil, true)
	if err != nil {
		return nil, err
	}
	record := normalize.ExtractSingle(raw)
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}
