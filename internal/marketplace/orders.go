package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/playtrade/storefront/internal/normalize"
)

// idempotencyHeader lets the API deduplicate a resubmitted purchase or
// order; the key is generated fresh per logical submission.
const idempotencyHeader = "Idempotency-Key"

// PurchaseAccount buys a listed game account. The returned record is the
// completed purchase (credentials included, per the account's listing).
func (c *Client) PurchaseAccount(ctx context.Context, accountID string) (map[string]any, error) {
	raw, err := c.idempotentPost(ctx, "/game-accounts/"+url.PathEscape(accountID)+"/purchase", nil)
	if err != nil {
		return nil, err
	}
	record := normalize.ExtractSingle(raw)
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

// SubmitOrder places a boosting-service order for a package.
func (c *Client) SubmitOrder(ctx context.Context, order map[string]any) (map[string]any, error) {
	raw, err := c.idempotentPost(ctx, "/orders", order)
	if err != nil {
		return nil, err
	}
	record := normalize.ExtractSingle(raw)
	if record == nil {
		// Some order endpoints answer with just a message.
		return map[string]any{"message": normalize.Message(raw)}, nil
	}
	return record, nil
}

func (c *Client) idempotentPost(ctx context.Context, path string, body any) ([]byte, error) {
	var reqBody *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(idempotencyHeader, uuid.NewString())
	if err := c.authorize(req, true); err != nil {
		return nil, err
	}
	return c.do(req, path)
}
