// Package http provides HTTP handlers and middleware for the authorization
// API.
package http

import (
	"context"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// principalKey is a context key type for storing the request principal.
type principalKey struct{}

// WithPrincipal stores the request principal in the context. This is called
// by PrincipalMiddleware after parsing the gateway-injected identity
// headers.
func WithPrincipal(ctx context.Context, principal *authzDomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipal retrieves the request principal from the context. Returns
// (principal, true) if one is present, or (nil, false) if no principal was
// set.
func GetPrincipal(ctx context.Context) (*authzDomain.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*authzDomain.Principal)
	return principal, ok
}
