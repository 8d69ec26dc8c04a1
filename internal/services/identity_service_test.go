package services_test

import (
	"testing"
	"time"

	"storefront/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestIdentityService_VerifyToken(t *testing.T) {
	identity := services.NewIdentityService(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-123",
		"email": "member@example.com",
		"name":  "Member",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	customer, err := identity.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", customer.ID)
	assert.Equal(t, "member@example.com", customer.Email)
	assert.Equal(t, "Member", customer.Name)
}

func TestIdentityService_RejectsBadTokens(t *testing.T) {
	identity := services.NewIdentityService(testSecret)

	_, err := identity.VerifyToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	wrongSecret := signToken(t, "other", jwt.MapClaims{"email": "a@b.co", "exp": time.Now().Add(time.Hour).Unix()})
	_, err = identity.VerifyToken(wrongSecret)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	expired := signToken(t, testSecret, jwt.MapClaims{"email": "a@b.co", "exp": time.Now().Add(-time.Hour).Unix()})
	_, err = identity.VerifyToken(expired)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	noEmail := signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	_, err = identity.VerifyToken(noEmail)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	_, err = services.NewIdentityService("").VerifyToken(noEmail)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}
