package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the display subset of an access token's claims.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
}

// Expired reports whether the token is past its expiry at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// AccessClaims reads the subject and expiry from a JWT access token without
// checking its signature. The result is for display only; the API remains
// the authority on whether the token is valid.
func AccessClaims(token string) (Claims, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("session.AccessClaims: %w", err)
	}
	c := Claims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		c.ExpiresAt = claims.ExpiresAt.Time
	}
	return c, nil
}
