package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the subset of JWT claims the client reads locally.
// The client never verifies signatures; that is the backend's job. Claims
// are inspected only to fail fast on an expired credential and to show
// who is logged in.
type TokenClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
}

// GetUserID returns the user ID from the JWT subject claim
func (c *TokenClaims) GetUserID() string {
	return c.Subject
}
