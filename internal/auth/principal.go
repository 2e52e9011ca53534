package auth

import "context"

const (
	RoleAuthenticated = "authenticated"
	RoleAdmin         = "admin"
	RolePublic        = "public"
)

// Principal is the authenticated caller of a request
type Principal struct {
	UserID uint
	Role   string
}

// HasRole reports whether the principal holds one of roles
func (p Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type contextKey struct{}

// WithPrincipal stores p in ctx
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored in ctx, if any
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
