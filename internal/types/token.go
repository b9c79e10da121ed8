package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by a magic-link session token. The
// provider signs them; this service only verifies them.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}
