// Package gateway serves the storefront's canonical JSON API. It sits
// between a browser frontend and the marketplace API, normalizing the
// marketplace's uneven response envelopes into one stable shape and
// holding the user's session locally.
package gateway

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/playtrade/storefront/internal/config"
	"github.com/playtrade/storefront/internal/logging"
	"github.com/playtrade/storefront/internal/marketplace"
	"github.com/playtrade/storefront/internal/metrics"
	"github.com/playtrade/storefront/internal/middleware"
	"github.com/playtrade/storefront/internal/session"
)

// Gateway holds the dependencies shared by all handlers.
type Gateway struct {
	cfg      *config.Config
	client   *marketplace.Client
	sessions *session.Manager
	log      *logging.Logger
	metrics  *metrics.Metrics
}

// New creates a gateway. All dependencies are required except metrics,
// which may be nil when the caller does not scrape.
func New(cfg *config.Config, client *marketplace.Client, sessions *session.Manager, log *logging.Logger, m *metrics.Metrics) *Gateway {
	if m == nil {
		m = metrics.New("storefront")
	}
	return &Gateway{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		log:      log,
		metrics:  m,
	}
}

// Router builds the full route table with middleware applied.
func (g *Gateway) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.TracingMiddleware(g.log))
	r.Use(middleware.MetricsMiddleware(g.metrics))
	r.Use(middleware.NewCORSMiddleware(g.cfg.AllowedOrigins).Handler)

	limiter := middleware.NewRateLimiter(g.cfg.RateLimit.RequestsPerSecond, g.cfg.RateLimit.Burst, g.log)
	r.Use(limiter.Handler)

	r.HandleFunc("/healthz", g.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", g.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Catalog, open to anonymous browsing.
	api.HandleFunc("/categories", g.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}/groups", g.handleGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id}/accounts", g.handleAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", g.handleAccountDetail).Methods(http.MethodGet)
	api.HandleFunc("/services", g.handleServices).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}/packages", g.handleServicePackages).Methods(http.MethodGet)

	// Auth.
	api.HandleFunc("/auth/login", g.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", g.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/forgot-password", g.handleForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password/{token}", g.handleResetPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", g.handleLogout).Methods(http.MethodPost)

	// Routes that need a signed-in user.
	auth := middleware.NewAuthMiddleware(g.sessions, g.log)

	protected := api.NewRoute().Subrouter()
	protected.Use(auth.Handler)
	protected.HandleFunc("/auth/me", g.handleMe).Methods(http.MethodGet)
	protected.HandleFunc("/auth/change-password", g.handleChangePassword).Methods(http.MethodPost)
	protected.HandleFunc("/orders", g.handleSubmitOrder).Methods(http.MethodPost)
	protected.HandleFunc("/accounts/{id}/purchase", g.handlePurchase).Methods(http.MethodPost)
	protected.HandleFunc("/upload", g.handleUpload).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Handler)
	admin.HandleFunc("/accounts", g.handleAdminCreateAccount).Methods(http.MethodPost)
	admin.HandleFunc("/accounts/{id}", g.handleAdminAccountDetail).Methods(http.MethodGet)
	admin.HandleFunc("/accounts/{id}", g.handleAdminUpdateAccount).Methods(http.MethodPut)
	admin.HandleFunc("/users", g.handleAdminListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users", g.handleAdminCreateUser).Methods(http.MethodPost)

	// Preflight requests must reach the CORS middleware even though no
	// concrete route declares the OPTIONS method.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
