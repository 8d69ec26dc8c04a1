package services

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// ErrInvalidToken is returned for tokens the identity provider did not sign.
var ErrInvalidToken = errors.New("invalid token")

// IdentityService verifies tokens issued by the external identity provider.
// Accounts live with the provider; this service only reads the claims.
type IdentityService struct {
	secret []byte
}

// NewIdentityService creates an IdentityService for HS256 tokens signed with secret.
func NewIdentityService(secret string) *IdentityService {
	return &IdentityService{
		secret: []byte(secret),
	}
}

// Enabled reports whether a signing secret is configured.
func (s *IdentityService) Enabled() bool {
	return len(s.secret) > 0
}

// VerifyToken parses and validates a token and returns the signed-in customer.
func (s *IdentityService) VerifyToken(tokenString string) (*models.Customer, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: identity provider not configured", ErrInvalidToken)
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email claim missing", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	return &models.Customer{ID: sub, Email: email, Name: name}, nil
}
