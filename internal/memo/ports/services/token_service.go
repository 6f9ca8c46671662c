// Package services defines service interfaces for the memo service.
package services

import (
	"context"
	"errors"
)

// TokenService validates access tokens issued by the sign-in flow.
type TokenService interface {
	// ValidateAccessToken returns the owner id carried by token.
	ValidateAccessToken(ctx context.Context, token string) (string, error)
}

// JWT errors.
var (
	ErrInvalidJWTToken = errors.New("invalid JWT token")
	ErrExpiredJWTToken = errors.New("JWT token has expired")
)
