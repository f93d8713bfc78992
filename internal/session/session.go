// Package session holds the authenticated user's identity and bearer token
// for the lifetime of the process, mirroring a minimal projection to durable
// storage.
//
// The in-memory record may carry arbitrary extra fields for immediate use,
// but only the display name and bearer token survive a restart. Login
// replaces the record wholesale; there is no partial update — consumers
// needing fresh profile data re-fetch it from the API. Logout always reaches
// the no-session state: storage and cookie errors are swallowed.
package session

import (
	"encoding/json"
	"sync"

	"github.com/playtrade/storefront/internal/logging"
)

// Persisted projection keys. Everything else on the login payload is
// deliberately dropped from durable storage.
const (
	nameKey  = "name"
	tokenKey = "access_token"
)

// Manager is the single source of truth for "who is logged in, with what
// credential". It is safe for concurrent use; Login and Logout are the only
// mutators.
type Manager struct {
	mu      sync.Mutex
	loaded  bool
	user    map[string]any
	storage Storage
	cookies Cookies
	log     *logging.Logger
}

// NewManager creates a manager over the given durable storage and cookie
// jar. Both may be nil, in which case the corresponding side effects become
// no-ops (useful in tests).
func NewManager(storage Storage, cookies Cookies, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewDefault("session")
	}
	return &Manager{storage: storage, cookies: cookies, log: log}
}

// Current returns the in-memory session record, initializing it from
// durable storage on first access. Absent or unparsable storage yields nil,
// never an error.
func (m *Manager) Current() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadLocked()
	return m.user
}

// Token returns the bearer token of the current session, or "".
func (m *Manager) Token() string {
	user := m.Current()
	if user == nil {
		return ""
	}
	if token, ok := user[tokenKey].(string); ok {
		return token
	}
	return ""
}

// Name returns the display name of the current session, or "".
func (m *Manager) Name() string {
	user := m.Current()
	if user == nil {
		return ""
	}
	if name, ok := user[nameKey].(string); ok {
		return name
	}
	return ""
}

// Authenticated reports whether a session record exists. An empty record is
// still an authenticated session; Login does not validate its payload.
func (m *Manager) Authenticated() bool {
	return m.Current() != nil
}

// Login replaces the session with user verbatim and persists the minimal
// {name, access_token} projection, overwriting any previous record.
func (m *Manager) Login(user map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loaded = true
	m.user = user

	minimal := map[string]any{}
	if user != nil {
		if name, ok := user[nameKey]; ok {
			minimal[nameKey] = name
		}
		if token, ok := user[tokenKey]; ok {
			minimal[tokenKey] = token
		}
	}

	if m.storage != nil {
		data, err := json.Marshal(minimal)
		if err == nil {
			err = m.storage.Write(data)
		}
		if err != nil {
			m.log.WithError(err).Warn("persist session projection")
		}
	}
}

// Logout clears the session: memory, the durable record and both auth
// cookies. Every step is best-effort; Logout never fails and calling it
// again is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loaded = true
	m.user = nil

	if m.storage != nil {
		if err := m.storage.Clear(); err != nil {
			m.log.WithError(err).Warn("clear stored session")
		}
	}
	if m.cookies != nil {
		if err := m.cookies.Clear(AccessTokenCookie); err != nil {
			m.log.WithError(err).Warn("clear access token cookie")
		}
		if err := m.cookies.Clear(RefreshTokenCookie); err != nil {
			m.log.WithError(err).Warn("clear refresh token cookie")
		}
	}
}

// Reset drops the in-memory cell so the next Current re-reads storage.
// Simulates a page reload; used by tests.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = false
	m.user = nil
}

// loadLocked performs the lazy one-time read of durable storage. Storage is
// read once per process; later external changes are not observed until a
// Reset.
func (m *Manager) loadLocked() {
	if m.loaded {
		return
	}
	m.loaded = true

	if m.storage == nil {
		return
	}
	data, err := m.storage.Read()
	if err != nil {
		if err != ErrNotFound {
			m.log.WithError(err).Warn("read stored session")
		}
		return
	}

	var user map[string]any
	if err := json.Unmarshal(data, &user); err != nil {
		m.log.WithError(err).Warn("stored session unparsable, treating as logged out")
		return
	}
	m.user = user
}
