package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/cache"
	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"
)

// DefaultDashboardTTL bounds how stale a cached dashboard can get if an
// invalidation is lost.
const DefaultDashboardTTL = 5 * time.Minute

type DashboardService struct {
	Store store.Store
	Cache cache.Cache // optional
	TTL   time.Duration
}

// Get returns the company's dashboard, computing it on a cache miss. Cache
// failures are logged and fall through to the database.
//
// The fill is stored under the generation read before loading, so a mutation
// committing mid-load leaves the result unreachable instead of stale.
func (s *DashboardService) Get(ctx context.Context, a domain.Actor) (domain.Dashboard, error) {
	if err := authorize(a, domain.ActionRead); err != nil {
		return domain.Dashboard{}, err
	}
	l := slogx.FromContext(ctx)

	var key string
	if s.Cache != nil {
		gen, err := cache.DashboardGeneration(ctx, s.Cache, a.CompanyID)
		if err != nil {
			l.Warn("dashboard cache read failed", slog.Any("err", err))
		} else {
			key = cache.DashboardKey(a.CompanyID, gen)
		}
	}

	if key != "" {
		var d domain.Dashboard
		err := s.Cache.Get(ctx, key, &d)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			l.Warn("dashboard cache read failed", slog.Any("err", err))
		}
	}

	stages, err := s.Store.Stages().ListStages(ctx, a.CompanyID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	leads, err := s.Store.Leads().ListLeads(ctx, a.CompanyID, store.LeadFilter{})
	if err != nil {
		return domain.Dashboard{}, err
	}
	d := domain.ComputeDashboard(stages, leads)

	if key != "" {
		ttl := s.TTL
		if ttl <= 0 {
			ttl = DefaultDashboardTTL
		}
		if err := s.Cache.Set(ctx, key, d, ttl); err != nil {
			l.Warn("dashboard cache write failed", slog.Any("err", err))
		}
	}
	return d, nil
}
