package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playtrade/storefront/internal/marketplace"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

// writeError maps client errors onto HTTP responses. Upstream failures
// surface once with the upstream's status and message; transport
// failures become a 502.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, marketplace.ErrNoToken):
		writeMessage(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, marketplace.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
		w.WriteHeader(http.StatusBadGateway)
	default:
		var apiErr *marketplace.APIError
		if errors.As(err, &apiErr) {
			writeMessage(w, apiErr.Status, apiErr.Message)
			return
		}
		g.metrics.RecordUpstreamError(r.URL.Path)
		g.log.WithContext(r.Context()).WithError(err).Error("upstream request failed")
		writeMessage(w, http.StatusBadGateway, "upstream unavailable")
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	if err := decoder.Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}
