package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// credentialExpired reports whether credential is a JWT whose exp claim is
// not after now. Opaque credentials are never considered expired here; the
// backend decides.
func credentialExpired(credential string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
