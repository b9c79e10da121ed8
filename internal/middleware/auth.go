package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipegen/backend/internal/apperrors"
	"github.com/pageza/recipegen/backend/internal/types"
)

const sessionEmailKey = "user_email"

// TokenValidator is an interface for validating session tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.SessionClaims, error)
}

// AuthMiddleware requires a valid bearer session token and stores its email
// claim on the context
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			Abort(c, err)
			return
		}
		if token == "" {
			Abort(c, apperrors.Unauthorized("missing authorization header"))
			return
		}
		if !authenticate(c, validator, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware validates a bearer token when one is sent and lets
// anonymous requests through
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			Abort(c, err)
			return
		}
		if token != "" && !authenticate(c, validator, token) {
			return
		}
		c.Next()
	}
}

// SessionEmail returns the authenticated email, if any
func SessionEmail(c *gin.Context) (string, bool) {
	email := c.GetString(sessionEmailKey)
	return email, email != ""
}

func authenticate(c *gin.Context, validator TokenValidator, token string) bool {
	claims, err := validator.ValidateToken(token)
	if err != nil {
		Abort(c, err)
		return false
	}
	c.Set(sessionEmailKey, claims.Email)
	return true
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", nil
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.Unauthorized("invalid authorization header format")
	}
	return parts[1], nil
}
