package auth

import "context"

type principalContextKey struct{}

// ContextWithPrincipal installs p as the trust context of ctx.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &p)
}

// PrincipalFromContext returns the principal installed in ctx, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || v == nil {
		return Principal{}, false
	}
	return *v, true
}

// HasPrincipal reports whether a trust context is installed in ctx.
func HasPrincipal(ctx context.Context) bool {
	_, ok := PrincipalFromContext(ctx)
	return ok
}
