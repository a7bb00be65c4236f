package auth

import (
	"context"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
)

type principalContextKey struct{}

// SetPrincipal stores the caller resolved by the gate on the context.
func SetPrincipal(ctx context.Context, p gate.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFrom retrieves the caller from the context.
func PrincipalFrom(ctx context.Context) (gate.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(gate.Principal)
	return p, ok && p.UserID != ""
}

type tokenContextKey struct{}

// SetToken stores the raw session token on the context.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFrom retrieves the raw session token from the context.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}
