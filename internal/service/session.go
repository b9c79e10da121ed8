package service

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pageza/recipegen/backend/internal/apperrors"
	"github.com/pageza/recipegen/backend/internal/types"
)

// SessionService verifies session tokens minted by the magic-link provider.
// It never issues tokens.
type SessionService struct {
	secret []byte
}

func NewSessionService(secret string) *SessionService {
	return &SessionService{secret: []byte(secret)}
}

// ValidateToken parses an HS256 token and returns its claims. The token must
// carry an email claim.
func (s *SessionService) ValidateToken(tokenString string) (*types.SessionClaims, error) {
	claims := &types.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthorized("session has expired")
		}
		return nil, apperrors.Unauthorized("invalid session token")
	}
	if !token.Valid {
		return nil, apperrors.Unauthorized("invalid session token")
	}

	claims.Email = strings.ToLower(strings.TrimSpace(claims.Email))
	if claims.Email == "" {
		return nil, apperrors.Unauthorized("session token has no email")
	}
	return claims, nil
}
