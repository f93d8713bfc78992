package marketplace

import (
	"context"
	"net/http"
	"net/url"

	"github.com/playtrade/storefront/internal/normalize"
)

// AccountWrite is the write-side shape of a game account listing. The admin
// form submits images as a single string; the API stores it as entered and
// readers parse it tolerantly.
type AccountWrite struct {
	Name     string         `json:"name"`
	Password string         `json:"password"`
	Price    float64        `json:"price"`
	Thumb    string         `json:"thumb"`
	Images   string         `json:"images"`
	Details  map[string]any `json:"details"`
}

// UserWrite is the admin user-creation shape.
type UserWrite struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// AdminAccountDetail fetches a listing including fields hidden from the
// public detail endpoint.
func (c *Client) AdminAccountDetail(ctx context.Context, accountID string) (map[string]any, error) {
	raw, err := c.request(ctx, http.MethodGet, "/game-accounts/detail/"+url.PathEscape(accountID), nil, true)
	if err != nil {
		return nil, err
	}
	record := normalize.ExtractSingle(raw)
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

// UpdateAccount replaces a listing's editable fields.
func (c *Client) UpdateAccount(ctx context.Context, accountID string, account AccountWrite) (string, error) {
	raw, err := c.request(ctx, http.MethodPut, "/game-accounts/account-detail/"+url.PathEscape(accountID), account, true)
	if err != nil {
		return "", err
	}
	return normalize.Message(raw), nil
}

// CreateAccount publishes a new listing.
func (c *Client) CreateAccount(ctx context.Context, account AccountWrite) (string, error) {
	raw, err := c.request(ctx, http.MethodPost, "/game-accounts", account, true)
	if err != nil {
		return "", err
	}
	return normalize.Message(raw), nil
}

// CreateUser creates a user on behalf of an administrator.
func (c *Client) CreateUser(ctx context.Context, user UserWrite) (string, error) {
	raw, err := c.request(ctx, http.MethodPost, "/users", user, true)
	if err != nil {
		return "", err
	}
	return normalize.Message(raw), nil
}

// ListUsers lists registered users.
func (c *Client) ListUsers(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.request(ctx, http.MethodGet, "/users", nil, true)
	if err != nil {
		return nil, err
	}
	return normalize.ExtractRecords(raw), nil
}
