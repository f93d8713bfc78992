// Package middleware provides HTTP middleware for the storefront gateway.
package middleware

import "net/http"

// CORSMiddleware handles cross-origin requests from the browser frontend.
// Because the gateway sets auth cookies, responses carry
// Access-Control-Allow-Credentials and the origin must match exactly;
// a wildcard origin would be rejected by browsers for credentialed
// requests anyway.
type CORSMiddleware struct {
	allowedOrigins map[string]bool
}

// NewCORSMiddleware creates a new CORS middleware for the given origins.
func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &CORSMiddleware{allowedOrigins: allowed}
}

// Handler returns the CORS middleware handler.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && m.allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Trace-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
