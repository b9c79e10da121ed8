package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pageza/recipegen/backend/internal/apperrors"
	"github.com/pageza/recipegen/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims types.SessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(email string) types.SessionClaims {
	return types.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: email,
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewSessionService(testSecret)

	claims, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, testSecret, validClaims(" Cook@Example.com ")))

	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewSessionService(testSecret)

	expired := validClaims("cook@example.com")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := validClaims("cook@example.com")
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"garbage", "not.a.token", "invalid session token"},
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, "other", validClaims("cook@example.com")), "invalid session token"},
		{"wrong algorithm", signToken(t, jwt.SigningMethodHS512, testSecret, validClaims("cook@example.com")), "invalid session token"},
		{"expired", signToken(t, jwt.SigningMethodHS256, testSecret, expired), "session has expired"},
		{"no expiry", signToken(t, jwt.SigningMethodHS256, testSecret, noExpiry), "invalid session token"},
		{"no email", signToken(t, jwt.SigningMethodHS256, testSecret, validClaims("")), "session token has no email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
			assert.Equal(t, tt.message, apperrors.As(err).Message)
		})
	}
}
