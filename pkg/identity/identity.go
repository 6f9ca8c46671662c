// Package identity carries the authenticated record owner through a request context.
//
// Owner-scoped persistence adapters read the owner from the context instead of
// accepting it as an argument, so callers above the adapters cannot pass or fake it.
package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrUnauthenticated is returned when an owner-scoped call carries no owner identity.
var ErrUnauthenticated = errors.New("no authenticated owner in context")

type ownerKeyType struct{}

var ownerKey = ownerKeyType{}

// WithOwner returns a copy of ctx authenticated as owner. Blank owners are ignored.
func WithOwner(ctx context.Context, owner string) context.Context {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return ctx
	}
	return context.WithValue(ctx, ownerKey, owner)
}

// OwnerFromContext returns the authenticated owner or ErrUnauthenticated.
func OwnerFromContext(ctx context.Context) (string, error) {
	owner, ok := ctx.Value(ownerKey).(string)
	if !ok || owner == "" {
		return "", ErrUnauthenticated
	}
	return owner, nil
}

// IsAuthenticated reports whether ctx carries an owner.
func IsAuthenticated(ctx context.Context) bool {
	_, err := OwnerFromContext(ctx)
	return err == nil
}

// CatalogContext returns a context for public catalog reads: it keeps
// deadlines, values and cancellation of ctx but masks the owner identity.
func CatalogContext(ctx context.Context) context.Context {
	if !IsAuthenticated(ctx) {
		return ctx
	}
	return context.WithValue(ctx, ownerKey, "")
}
