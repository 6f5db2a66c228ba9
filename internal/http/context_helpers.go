package httpx

import (
	"context"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across
// packages. Centralized here so all handlers/middleware use the same key.
type identityKey struct{}

// SetIdentityInContext returns a child context carrying the given identity.
// If identity is nil, the original ctx is returned unchanged.
func SetIdentityInContext(ctx context.Context, identity *domainauth.Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the authenticated identity and whether one is present.
func IdentityFromContext(ctx context.Context) (*domainauth.Identity, bool) {
	if identity, ok := ctx.Value(identityKey{}).(*domainauth.Identity); ok && identity != nil {
		return identity, true
	}
	return nil, false
}
