package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charmemo/internal/memo/adapters/services"
	portservices "charmemo/internal/memo/ports/services"
)

const secretKey = "test-secret-key"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestValidateAccessToken(t *testing.T) {
	ctx := context.Background()
	service := services.NewJWT(secretKey)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("user_id claim", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(secretKey), &services.Claims{
			UserID:           "user-1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
		})

		owner, err := service.ValidateAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", owner)
	})

	t.Run("subject fallback", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(secretKey), &services.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2", ExpiresAt: future},
		})

		owner, err := service.ValidateAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-2", owner)
	})

	t.Run("expired", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(secretKey), &services.Claims{
			UserID:           "user-1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		})

		_, err := service.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, portservices.ErrExpiredJWTToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte("other"), &services.Claims{
			UserID:           "user-1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
		})

		_, err := service.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, portservices.ErrInvalidJWTToken)
	})

	t.Run("no owner", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(secretKey), &services.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
		})

		_, err := service.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, portservices.ErrInvalidJWTToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, &services.Claims{UserID: "user-1"})

		_, err := service.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, portservices.ErrInvalidJWTToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.ValidateAccessToken(ctx, "invalid.token.format")
		assert.ErrorIs(t, err, portservices.ErrInvalidJWTToken)
	})
}
