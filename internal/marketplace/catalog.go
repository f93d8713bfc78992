package marketplace

import (
	"context"
	"net/http"
	"net/url"

	"github.com/playtrade/storefront/internal/normalize"
)

// Categories lists the game categories shown on the storefront's landing
// page.
func (c *Client) Categories(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.request(ctx, http.MethodGet, "/game-categories", nil, false)
	if err != nil {
		return nil, err
	}
	return normalize.ExtractRecords(raw), nil
}

// GroupsByCategory lists the game groups under a category.
func (c *Client) GroupsByCategory(ctx context.Context, categoryID string) ([]map[string]any, error) {
	raw, err := c.request(ctx, http.MethodGet, "/game-groups/category/"+url.PathEscape(categoryID), nil, false)
	if err != nil {
		return nil, err
	}
	return normalize.ExtractRecords(raw), nil
}

// AccountsByGroup lists the game accounts for sale in a group.
func (c *Client) AccountsByGroup(ctx context.Context, groupID string) ([]map[string]any, error) {
	raw, err := c.request(ctx, http.MethodGet, "/game-accounts/group/"+url.PathEscape(groupID), nil, false)
	if err != nil {
		return nil, err
	}
	return normalize.ExtractRecords(raw), nil
}

// AccountDetail fetches one game account's public detail record.
func (c *Client) AccountDetail(ctx context.Context, accountID string) (map[string]any, error) {
	raw, err := c.request(ctx, http.MethodGet, "/game-accounts/"+url.PathEscape(accountID), nil, false)
	if err != nil {
		return nil, err
	}
	record := normalize.ExtractSingle(raw)
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

// Services lists the boosting services on offer.
func (c *Client) Services(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.request(ctx, http.MethodGet, "/game-services", nil, false)
	if err != nil {
		return nil, err
	}
	return normalize.ExtractRecords(raw), nil
}

// ServicePackages lists the purchasable packages of a boosting service.
func (c *Client) ServicePackages(ctx context.Context, serviceID string) ([]map[string]any, error) {
	raw, err := c.request(ctx, http.MethodGet, "/service-packages/game-services/"+url.PathEscape(serviceID), nil, false)
	if err != nil {
		return nil, err
	}
	return normalize.ExtractRecords(raw), nil
}
