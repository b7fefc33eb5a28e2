package auth

import (
	"context"

	"simpletodos/pkg/util"
)

type claimsKey struct{}

// WithClaims attaches the authenticated token claims to ctx.
func WithClaims(ctx context.Context, claims *util.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims of the signed-in caller, or nil.
func ClaimsFromContext(ctx context.Context) *util.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*util.Claims)
	return claims
}

// UserIDFromContext returns the caller's user id, or "" when anonymous.
func UserIDFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}
