package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is the subset of bearer-token claims the UI cares about. The
// token is decoded without verification — the remote API is the authority on
// validity; this is only a hint for expiry-driven UI decisions.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// PeekToken decodes the claims of a JWT bearer token without verifying its
// signature. Returns false for anything that does not parse as a JWT;
// opaque tokens are legal and simply carry no info.
func PeekToken(token string) (TokenInfo, bool) {
	if token == "" {
		return TokenInfo{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, false
	}

	info := TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, true
}

// TokenExpired reports whether token carries an expiry in the past. Tokens
// without a readable expiry are assumed live; the API will reject them if
// not.
func TokenExpired(token string, now time.Time) bool {
	info, ok := PeekToken(token)
	if !ok || info.ExpiresAt.IsZero() {
		return false
	}
	return info.ExpiresAt.Before(now)
}
