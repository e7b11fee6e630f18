// Package cache stores computed read models, currently the dashboard, keyed
// per company.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/leadboard/pkg/idx"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a JSON value cache. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// DashboardKey is the cache key of a company's dashboard at generation gen.
func DashboardKey(companyID, gen string) string {
	return "crm:dashboard:" + companyID + ":" + gen
}

func dashboardGenerationKey(companyID string) string {
	return "crm:dashboard-gen:" + companyID
}

// DashboardGeneration returns the current generation of a company's
// dashboard, or "" before its first invalidation. Read it before loading the
// data that will be cached under it.
func DashboardGeneration(ctx context.Context, c Cache, companyID string) (string, error) {
	var gen string
	err := c.Get(ctx, dashboardGenerationKey(companyID), &gen)
	if errors.Is(err, ErrMiss) {
		return "", nil
	}
	return gen, err
}

// InvalidateDashboard starts a new generation. Entries filled under an older
// generation are never read again and expire on their TTL.
func InvalidateDashboard(ctx context.Context, c Cache, companyID string) error {
	return c.Set(ctx, dashboardGenerationKey(companyID), idx.NewString(), 0)
}
