package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/playtrade/storefront/internal/logging"
	"github.com/playtrade/storefront/internal/session"
)

// AuthMiddleware guards routes that need a signed-in user. The gateway
// does not validate token signatures itself; the marketplace API is the
// authority. This middleware only rejects requests that carry no token
// at all, or one that is visibly past its expiry, so they fail fast
// without a round trip upstream.
type AuthMiddleware struct {
	sessions *session.Manager
	logger   *logging.Logger
}

// NewAuthMiddleware creates authentication middleware backed by the
// given session manager.
func NewAuthMiddleware(sessions *session.Manager, logger *logging.Logger) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, logger: logger}
}

// Handler returns the middleware handler.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			token = m.sessions.Token()
		}

		if token == "" {
			m.unauthorized(w, r, "missing credentials")
			return
		}
		if session.TokenExpired(token, time.Now()) {
			m.unauthorized(w, r, "token expired")
			return
		}

		ctx := r.Context()
		if name := m.sessions.Name(); name != "" {
			ctx = logging.WithUser(ctx, name)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	m.logger.WithContext(r.Context()).
		WithField("path", r.URL.Path).
		WithField("reason", reason).
		Warn("request rejected")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"authentication required"}`))
}

// bearerToken extracts the token from an Authorization header, or ""
// when the header is absent or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
