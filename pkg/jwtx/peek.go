// Package jwtx inspects JWT access tokens issued by the VRES backend.
//
// The client never verifies signatures; the backend owns the signing keys
// and is the only authority on token validity. What the client does need is
// the expiry claim, so a persisted session is not resumed with a token the
// backend is guaranteed to reject.
package jwtx

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiry returns the exp claim of a JWT without verifying its signature.
// Returns an error for tokens that are not JWTs or carry no exp claim.
func Expiry(token string) (time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("jwtx: parse token: %w", err)
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("jwtx: read exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("jwtx: token has no exp claim")
	}

	return exp.Time, nil
}

// Expired reports whether a persisted token is definitely expired at the
// given instant. Opaque tokens and JWTs without an exp claim report false:
// the backend decides their validity.
func Expired(token string, now time.Time) bool {
	exp, err := Expiry(token)
	if err != nil {
		return false
	}
	return now.After(exp)
}
