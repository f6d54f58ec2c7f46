package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trident/internal/domain/models"
)

// ParseClaims decodes the claims of a JWT without verifying its signature.
// Signature validation happens on the backend; the client only inspects
// claims it can read locally.
func ParseClaims(token string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// Expired reports whether token carries an exp claim in the past. Opaque
// tokens and tokens without an expiry are never treated as expired here;
// the backend has the final word on those.
func Expired(token string, now time.Time) bool {
	claims, err := ParseClaims(token)
	if err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
