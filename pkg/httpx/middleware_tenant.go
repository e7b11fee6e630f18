package httpx

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/aussiebroadwan/leadboard/pkg/slogx"
)

// ErrNoTenant is returned by a TenantResolver when the user has no active
// company or is no longer a member of it.
var ErrNoTenant = errors.New("httpx: no active company")

// TenantResolver looks up the caller's active company and role.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, userID string) (Tenant, error)
}

// TenantResolverFunc adapts a function to TenantResolver.
type TenantResolverFunc func(ctx context.Context, userID string) (Tenant, error)

func (f TenantResolverFunc) ResolveTenant(ctx context.Context, userID string) (Tenant, error) {
	return f(ctx, userID)
}

// TenantMiddleware resolves the tenant on every request, so membership and
// role changes apply immediately. Must run after AuthnMiddleware.
func TenantMiddleware(res TenantResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := UserIDFromContext(ctx)
			if userID == "" {
				writeBearerError(w, "missing bearer token")
				return
			}

			t, err := res.ResolveTenant(ctx, userID)
			switch {
			case errors.Is(err, ErrNoTenant):
				WriteError(w, http.StatusForbidden, "no_company", "select or create a company first")
				return
			case err != nil:
				slogx.FromContext(ctx).Error("resolve tenant", "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
				return
			}

			ctx = WithTenant(ctx, t)
			ctx = slogx.With(ctx, "company_id", t.CompanyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose tenant role is not listed.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, ok := TenantFromContext(r.Context())
			if !ok || !slices.Contains(roles, t.Role) {
				WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
