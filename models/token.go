package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, JWT payload'u.
// Birden fazla katman (services, middleware, ws) kullandığı için models'te durur.
type TokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
