package session

import (
	"net/http"
	"sync"
	"time"
)

// Cookie names used by the collaborating auth flows. The session manager
// itself only clears them on logout.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Cookies abstracts the cookie storage holding the two auth artifacts.
type Cookies interface {
	Set(name, value string, days int) error
	Get(name string) (string, bool)
	Clear(name string) error
}

// NewAuthCookie builds an http.Cookie for an auth artifact with the
// attributes the storefront has always used: Path=/, SameSite=Lax and an
// expiry measured in days. days <= 0 produces a session cookie; an empty
// value produces an expired cookie suitable for removal.
func NewAuthCookie(name, value string, days int) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
		return c
	}
	if days > 0 {
		c.Expires = time.Now().Add(time.Duration(days) * 24 * time.Hour)
		c.MaxAge = days * 24 * 60 * 60
	}
	return c
}

// MemoryCookies is a process-local cookie jar used by the gateway to mirror
// what it instructed the browser to hold, and by tests as a fake.
type MemoryCookies struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryCookies creates an empty jar.
func NewMemoryCookies() *MemoryCookies {
	return &MemoryCookies{values: make(map[string]string)}
}

func (c *MemoryCookies) Set(name, value string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
	return nil
}

func (c *MemoryCookies) Get(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[name]
	return v, ok
}

func (c *MemoryCookies) Clear(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, name)
	return nil
}
