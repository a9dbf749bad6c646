package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
)

// refreshFraction is the share of a token's lifetime after which a
// refresh becomes due.
const refreshFraction = 0.75

// Claims is the payload the exchange backend embeds in access tokens.
// The console decodes it without verifying the signature — verification
// is the backend's job, so every decoded value is advisory only.
type Claims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Decode extracts the claims from a bearer token without verifying its
// signature. Tokens that are not three dot-separated segments, or whose
// payload is not base64url JSON, return ErrMalformedToken rather than
// panicking into callers.
func Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// IsExpired reports whether the token's embedded expiry is in the past.
// Malformed tokens and tokens without an expiry count as expired: they
// carry no usable session evidence.
func IsExpired(tokenString string) bool {
	claims, err := Decode(tokenString)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return time.Now().After(claims.ExpiresAt.Time)
}

// RemainingSeconds returns the whole seconds until the token expires,
// or zero for expired and malformed tokens.
func RemainingSeconds(tokenString string) int64 {
	claims, err := Decode(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return int64(remaining.Seconds())
}

// RefreshDueIn returns how long until a refresh is due: 75% of the
// token's total lifetime past issuance, clamped to zero. Tokens without
// both issued-at and expiry are due immediately.
func RefreshDueIn(tokenString string) time.Duration {
	claims, err := Decode(tokenString)
	if err != nil || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return 0
	}

	lifetime := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time)
	if lifetime <= 0 {
		return 0
	}

	dueAt := claims.IssuedAt.Time.Add(time.Duration(float64(lifetime) * refreshFraction))
	due := time.Until(dueAt)
	if due < 0 {
		return 0
	}
	return due
}

// Subject returns the subject id carried by the token, or empty when
// the token cannot be decoded.
func Subject(tokenString string) string {
	claims, err := Decode(tokenString)
	if err != nil {
		return ""
	}
	return claims.Subject
}
