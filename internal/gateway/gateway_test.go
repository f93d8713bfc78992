package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/playtrade/storefront/internal/config"
	"github.com/playtrade/storefront/internal/logging"
	"github.com/playtrade/storefront/internal/marketplace"
	"github.com/playtrade/storefront/internal/session"
)

func newTestGateway(t *testing.T, upstream http.Handler) (*Gateway, *session.Manager) {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.APIBaseURL = server.URL

	sessions := session.NewManager(session.NewMemoryStorage(), session.NewMemoryCookies(), nil)
	client, err := marketplace.NewClient(marketplace.Config{BaseURL: server.URL, Tokens: sessions})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	return New(cfg, client, sessions, logging.NewDefault("test"), nil), sessions
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	g, _ := newTestGateway(t, http.NotFoundHandler())
	rec := doJSON(t, g.Router(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCategoriesDecoration(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"data":[
			{"id":"1","name":"MMO","thumbnail":"images/mmo.png"},
			{"id":"2","name":"FPS","image":"https://cdn.example/fps.png"},
			{"id":"3","name":"MOBA"}
		]}}`))
	}))

	rec := doJSON(t, g.Router(), http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := decodeResponse(t, rec)
	result := body["result"].([]any)
	if len(result) != 3 {
		t.Fatalf("result length = %d", len(result))
	}

	first := result[0].(map[string]any)
	if first["image"] != "/images/mmo.png" {
		t.Errorf("thumbnail not resolved: %v", first["image"])
	}
	second := result[1].(map[string]any)
	if second["image"] != "https://cdn.example/fps.png" {
		t.Errorf("absolute image changed: %v", second["image"])
	}
	third := result[2].(map[string]any)
	if third["image"] != "" {
		t.Errorf("missing image should be empty, got %v", third["image"])
	}
}

func TestAccountsDecorationAndFilters(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"data":[
			{"id":"1","name":"Dragon Slayer","price":1500000,"images":"[\"a.png\",\"b.png\"]"},
			{"id":"2","name":"Starter","price":50000,"images":"c.png,d.png","thumb":"thumbs/starter.png"},
			{"id":"3","name":"Dragon Hoard","price":9000000}
		]}}`))
	}))
	router := g.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/groups/g1/accounts", nil)
	body := decodeResponse(t, rec)
	result := body["result"].([]any)
	if len(result) != 3 {
		t.Fatalf("unfiltered length = %d", len(result))
	}

	first := result[0].(map[string]any)
	images := first["images"].([]any)
	if len(images) != 2 || images[0] != "/a.png" {
		t.Errorf("images = %v", images)
	}
	if first["thumb"] != "/a.png" {
		t.Errorf("thumb fallback = %v", first["thumb"])
	}
	if first["price_display"] != "1.500.000" {
		t.Errorf("price_display = %v", first["price_display"])
	}
	second := result[1].(map[string]any)
	if second["thumb"] != "/thumbs/starter.png" {
		t.Errorf("explicit thumb = %v", second["thumb"])
	}

	rec = doJSON(t, router, http.MethodGet, "/api/groups/g1/accounts?search=dragon", nil)
	if got := len(decodeResponse(t, rec)["result"].([]any)); got != 2 {
		t.Errorf("search filter returned %d records", got)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/groups/g1/accounts?min_price=100000&max_price=2000000", nil)
	filtered := decodeResponse(t, rec)["result"].([]any)
	if len(filtered) != 1 || filtered[0].(map[string]any)["name"] != "Dragon Slayer" {
		t.Errorf("price filter = %v", filtered)
	}

	// Unparsable bounds are ignored.
	rec = doJSON(t, router, http.MethodGet, "/api/groups/g1/accounts?min_price=abc", nil)
	if got := len(decodeResponse(t, rec)["result"].([]any)); got != 3 {
		t.Errorf("invalid bound filtered records: %d", got)
	}
}

func TestAccountDetailNotFound(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))

	rec := doJSON(t, g.Router(), http.MethodGet, "/api/accounts/404", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUpstreamErrorSurfacesOnce(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"maintenance"}`))
	}))

	rec := doJSON(t, g.Router(), http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if decodeResponse(t, rec)["message"] != "maintenance" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestLoginSetsCookiesAndSession(t *testing.T) {
	g, sessions := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"message":"ok","result":{"access_token":"at-1","refresh_token":"rt-1"}}`))
	}))

	rec := doJSON(t, g.Router(), http.MethodPost, "/api/auth/login",
		map[string]string{"username": "ann", "password": "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}
	access, ok := byName[session.AccessTokenCookie]
	if !ok || access.Value != "at-1" {
		t.Fatalf("access cookie = %+v", access)
	}
	if access.Path != "/" || access.SameSite != http.SameSiteLaxMode {
		t.Errorf("access cookie attributes = %+v", access)
	}
	refresh, ok := byName[session.RefreshTokenCookie]
	if !ok || refresh.Value != "rt-1" {
		t.Fatalf("refresh cookie = %+v", refresh)
	}
	if refresh.MaxAge <= access.MaxAge {
		t.Errorf("refresh cookie should outlive access cookie: %d vs %d", refresh.MaxAge, access.MaxAge)
	}

	if !sessions.Authenticated() || sessions.Name() != "ann" || sessions.Token() != "at-1" {
		t.Fatalf("session not established: %v", sessions.Current())
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called")
	}))

	rec := doJSON(t, g.Router(), http.MethodPost, "/api/auth/login", map[string]string{"username": "ann"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid registration reached upstream")
	}))
	router := g.Router()

	cases := []map[string]string{
		{"username": "", "email": "a@b.c", "password": "Pass1!", "confirm_password": "Pass1!"},
		{"username": "ann", "email": "nomail", "password": "Pass1!", "confirm_password": "Pass1!"},
		{"username": "ann", "email": "a@b.c", "password": "Pass1!", "confirm_password": "other"},
		{"username": "ann", "email": "a@b.c", "password": "password1!", "confirm_password": "password1!"},
		{"username": "ann", "email": "a@b.c", "password": "Password!", "confirm_password": "Password!"},
		{"username": "ann", "email": "a@b.c", "password": "Password1", "confirm_password": "Password1"},
	}
	for i, payload := range cases {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register", payload)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d", i, rec.Code)
		}
	}
}

func TestRegisterForwardsValidPayload(t *testing.T) {
	g, sessions := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["username"] != "ann" || payload["password"] != "Password1!" {
			t.Errorf("payload = %v", payload)
		}
		_, _ = w.Write([]byte(`{"message":"registered"}`))
	}))

	rec := doJSON(t, g.Router(), http.MethodPost, "/api/auth/register", map[string]string{
		"username":         "ann",
		"email":            "ann@example.com",
		"password":         "Password1!",
		"confirm_password": "Password1!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	// Registration never signs the user in.
	if sessions.Authenticated() {
		t.Fatal("session established by register")
	}
}

func TestChangePasswordValidationAndLogout(t *testing.T) {
	g, sessions := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"changed"}`))
	}))
	sessions.Login(map[string]any{"name": "ann", "access_token": "tok"})
	router := g.Router()

	bad := []map[string]string{
		{"old_password": "old", "new_password": "short", "confirm_new_password": "short"},
		{"old_password": "same-pw", "new_password": "same-pw", "confirm_new_password": "same-pw"},
		{"old_password": "old", "new_password": "longenough", "confirm_new_password": "different"},
	}
	for i, payload := range bad {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/change-password", payload)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d", i, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodPost, "/api/auth/change-password", map[string]string{
		"old_password":         "old-pw",
		"new_password":         "new-pw-1",
		"confirm_new_password": "new-pw-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if sessions.Authenticated() {
		t.Fatal("session should end after a password change")
	}
}

func TestLogoutClearsCookies(t *testing.T) {
	g, sessions := newTestGateway(t, http.NotFoundHandler())
	sessions.Login(map[string]any{"name": "ann", "access_token": "tok"})

	rec := doJSON(t, g.Router(), http.MethodPost, "/api/auth/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	cleared := 0
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.AccessTokenCookie || c.Name == session.RefreshTokenCookie {
			if c.MaxAge >= 0 || c.Value != "" {
				t.Errorf("cookie %s not expired: %+v", c.Name, c)
			}
			cleared++
		}
	}
	if cleared != 2 {
		t.Fatalf("expected both cookies cleared, got %d", cleared)
	}
	if sessions.Authenticated() {
		t.Fatal("session survived logout")
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("anonymous request reached upstream")
	}))
	router := g.Router()

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/orders"},
		{http.MethodPost, "/api/accounts/1/purchase"},
		{http.MethodGet, "/api/admin/accounts/1"},
		{http.MethodGet, "/api/admin/users"},
	} {
		rec := doJSON(t, router, route.method, route.path, map[string]string{"x": "y"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d", route.method, route.path, rec.Code)
		}
	}
}

func TestMe(t *testing.T) {
	g, sessions := newTestGateway(t, http.NotFoundHandler())
	sessions.Login(map[string]any{"name": "ann", "access_token": "tok"})

	rec := doJSON(t, g.Router(), http.MethodGet, "/api/auth/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	result := decodeResponse(t, rec)["result"].(map[string]any)
	if result["name"] != "ann" {
		t.Fatalf("result = %v", result)
	}
	if _, leaked := result["access_token"]; leaked {
		t.Fatal("token leaked in /me response")
	}
}

func TestAdminUpdateRejectsInvalidDetails(t *testing.T) {
	g, sessions := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid details reached upstream")
	}))
	sessions.Login(map[string]any{"name": "admin", "access_token": "tok"})

	rec := doJSON(t, g.Router(), http.MethodPut, "/api/admin/accounts/7", map[string]any{
		"name":    "Acc",
		"price":   100,
		"details": "{not json",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "valid JSON") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestAdminUpdateForwardsParsedDetails(t *testing.T) {
	g, sessions := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/game-accounts/account-detail/7" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		details, ok := payload["details"].(map[string]any)
		if !ok || details["rank"] != "gold" {
			t.Errorf("details = %v", payload["details"])
		}
		_, _ = w.Write([]byte(`{"message":"updated"}`))
	}))
	sessions.Login(map[string]any{"name": "admin", "access_token": "tok"})

	rec := doJSON(t, g.Router(), http.MethodPut, "/api/admin/accounts/7", map[string]any{
		"name":    "Acc",
		"price":   100,
		"details": `{"rank":"gold"}`,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitOrder(t *testing.T) {
	g, sessions := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Idempotency-Key") == "" {
			t.Error("missing idempotency key")
		}
		_, _ = w.Write([]byte(`{"result":{"order_id":"o1"}}`))
	}))
	sessions.Login(map[string]any{"name": "ann", "access_token": "tok"})

	rec := doJSON(t, g.Router(), http.MethodPost, "/api/orders", map[string]any{"package_id": "p1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	result := decodeResponse(t, rec)["result"].(map[string]any)
	if result["order_id"] != "o1" {
		t.Fatalf("result = %v", result)
	}
}
