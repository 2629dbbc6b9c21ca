package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

var NowFunc = time.Now // mockable

// TokenExpiry extracts the expiry claim from a stored credential. The
// signature is never checked here; issuance and verification belong to the
// backend. A credential that does not parse as a JWT, or carries no expiry,
// is treated as opaque and reported as such.
func TokenExpiry(raw string) (time.Time, bool) {
	claims := new(jwt.StandardClaims)
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, false
	}
	return time.Unix(claims.ExpiresAt, 0), true
}

// tokenExpired reports whether a credential's expiry has already passed;
// opaque credentials are left for the backend to judge.
func tokenExpired(raw string) bool {
	exp, ok := TokenExpiry(raw)
	return ok && !NowFunc().Before(exp)
}
