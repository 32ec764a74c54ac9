package middleware

import (
	"context"

	pkgauth "github.com/zulal-hq/identity-backend/pkg/auth"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxTenantID contextKey = "tenant_id"
	ctxRole     contextKey = "actor_role"
	ctxClaims   contextKey = "session_claims"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func TenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTenantID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromContext returns the verified session claims seeded by Auth, or
// nil for unauthenticated requests.
func ClaimsFromContext(ctx context.Context) *pkgauth.SessionClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*pkgauth.SessionClaims); ok {
		return v
	}
	return nil
}

// WithClaims seeds the context the way Auth does. Exposed for handler tests.
func WithClaims(ctx context.Context, claims *pkgauth.SessionClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, claims.UserID.String())
	ctx = context.WithValue(ctx, ctxTenantID, claims.TenantID.String())
	ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
	return context.WithValue(ctx, ctxClaims, claims)
}
