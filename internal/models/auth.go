package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the token payload for authenticated operators.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
