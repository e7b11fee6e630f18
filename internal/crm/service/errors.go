package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/leadboard/internal/crm/cache"
	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/events"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"
)

var (
	// ErrInvalidInput wraps request problems that are not field validation
	// failures. Field failures are returned as *domain.ValidationError.
	ErrInvalidInput = errors.New("invalid_request")
	ErrNotFound     = errors.New("not_found")
	ErrForbidden    = errors.New("forbidden")

	ErrEmailTaken    = errors.New("email_taken")
	ErrSlugTaken     = errors.New("slug_taken")
	ErrAlreadyMember = errors.New("already_member")
	ErrNotMember     = errors.New("not_member")
	ErrNoCompany     = errors.New("no_company")
	ErrLastOwner     = errors.New("last_owner")
	ErrStageNotEmpty = errors.New("stage_not_empty")

	ErrInvalidGrant   = errors.New("invalid_grant")
	ErrWrongPassword  = errors.New("invalid_password")
	ErrMFARequired    = errors.New("mfa_required")
	ErrInvalidOTP     = errors.New("invalid_otp")
	ErrMFANotEnrolled = errors.New("mfa_not_enrolled")
	ErrMFAAlreadyOn   = errors.New("mfa_already_enabled")
	ErrMFANotEnabled  = errors.New("mfa_not_enabled")
)

// authorize fails with ErrForbidden unless the actor may perform action.
func authorize(a domain.Actor, action domain.Action) error {
	if !a.Can(action) {
		return ErrForbidden
	}
	return nil
}

// notFound translates the store sentinel so callers only see service errors.
func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// invalidateDashboard retires the cached dashboard of companyID. Failures are
// logged; the entry expires on its own.
func invalidateDashboard(ctx context.Context, c cache.Cache, companyID string) {
	if c == nil {
		return
	}
	if err := cache.InvalidateDashboard(ctx, c, companyID); err != nil {
		slogx.FromContext(ctx).Warn("dashboard cache invalidation failed",
			slog.String("company_id", companyID), slog.Any("err", err))
	}
}

// publish emits e, logging instead of failing the caller.
func publish(ctx context.Context, p events.Publisher, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		slogx.FromContext(ctx).Warn("event publish failed",
			slog.String("type", e.Type), slog.String("lead_id", e.LeadID), slog.Any("err", err))
	}
}
