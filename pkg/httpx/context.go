package httpx

import (
	"context"

	"github.com/aussiebroadwan/leadboard/pkg/jwtx"
)

type ctxKey string

const (
	ctxKeyUserID ctxKey = "user_id"
	ctxKeyClaims ctxKey = "claims"
	ctxKeyTenant ctxKey = "tenant"
)

// Tenant is the company the caller is acting in and their role there.
type Tenant struct {
	CompanyID string
	Role      string
}

// UserIDFromContext returns the authenticated subject, or "" when unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyUserID).(string)
	return v
}

// ClaimsFromContext returns the verified access-token claims.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return c, ok
}

// TenantFromContext returns the tenant resolved by TenantMiddleware.
func TenantFromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(ctxKeyTenant).(Tenant)
	return t, ok
}

// WithClaims stores verified claims and their subject in ctx.
func WithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, c.Subject)
	return context.WithValue(ctx, ctxKeyClaims, c)
}

// WithTenant stores t in ctx.
func WithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, ctxKeyTenant, t)
}
