// Package marketplace is the client for the remote marketplace REST API. It
// owns the single configurable base origin, attaches the bearer credential
// to authenticated calls and translates the API's error envelope into Go
// errors. Response envelopes are decoded through the normalize package, so
// callers always see canonical shapes regardless of which envelope
// generation an endpoint speaks.
package marketplace

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/playtrade/storefront/internal/logging"
	"github.com/playtrade/storefront/internal/normalize"
)

const (
	maxResponseBytes  = 8 << 20  // 8 MiB
	maxErrorBodyBytes = 32 << 10 // 32 KiB
)

// ErrNoToken is returned when an authenticated endpoint is called without a
// session token.
var ErrNoToken = errors.New("marketplace: no bearer token for authenticated call")

// ErrNotFound is returned when an entity endpoint responds with a body no
// envelope shape matches.
var ErrNotFound = errors.New("marketplace: entity not found in response")

// TokenSource supplies the current bearer token. The session manager
// satisfies this.
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx response from the marketplace API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("marketplace API error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("marketplace API error %d", e.Status)
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Config holds client construction parameters.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
	Logger  *logging.Logger
}

// Client talks to the marketplace API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *logging.Logger
}

// NewClient validates the base origin and builds a client with a 30s default
// timeout and TLS 1.2 minimum on the cloned default transport.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("marketplace: base URL is required")
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("marketplace: base URL %q is not a valid origin", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewDefault("marketplace")
	}

	transport := http.DefaultTransport
	if baseTransport, ok := http.DefaultTransport.(*http.Transport); ok {
		cloned := baseTransport.Clone()
		if cloned.TLSClientConfig == nil {
			cloned.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		} else if cloned.TLSClientConfig.MinVersion < tls.VersionTLS12 {
			cloned.TLSClientConfig = cloned.TLSClientConfig.Clone()
			cloned.TLSClientConfig.MinVersion = tls.VersionTLS12
		}
		transport = cloned
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		tokens: cfg.Tokens,
		log:    log,
	}, nil
}

// request executes one API call. body is JSON-marshalled when non-nil;
// authed attaches the bearer token. Non-2xx responses become *APIError with
// the envelope message.
func (c *Client) request(ctx context.Context, method, path string, body any, authed bool) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req, authed); err != nil {
		return nil, err
	}

	return c.do(req, path)
}

// do runs a prepared request and reads the body under limits.
func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, truncated, readErr := readAllWithLimit(resp.Body, maxErrorBodyBytes)
		if readErr != nil {
			return nil, fmt.Errorf("read error response: %w", readErr)
		}
		msg := normalize.Message(respBody)
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
			if truncated {
				msg += "...(truncated)"
			}
		}
		c.log.WithField("path", path).
			WithField("status", resp.StatusCode).
			Warn("marketplace API call failed")
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	respBody, err := readAllStrict(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return respBody, nil
}

func (c *Client) authorize(req *http.Request, authed bool) error {
	if !authed {
		return nil
	}
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token == "" {
		return ErrNoToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// readAllWithLimit reads at most limit bytes, reporting whether the body was
// truncated.
func readAllWithLimit(r io.Reader, limit int64) (data []byte, truncated bool, err error) {
	data, err = io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

// readAllStrict reads the whole body, failing if it exceeds limit.
func readAllStrict(r io.Reader, limit int64) ([]byte, error) {
	data, truncated, err := readAllWithLimit(r, limit)
	if err != nil {
		return nil, err
	}
	if truncated {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}
