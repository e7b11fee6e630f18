package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"
)

type errorMapping struct {
	err    error
	status int
	desc   string
}

// serviceErrors maps service sentinels to responses. The sentinel text is the
// error code.
var serviceErrors = []errorMapping{
	{service.ErrNotFound, http.StatusNotFound, "resource not found"},
	{service.ErrForbidden, http.StatusForbidden, "your role does not allow this action"},
	{service.ErrNotMember, http.StatusForbidden, "you are not a member of that company"},
	{service.ErrNoCompany, http.StatusForbidden, "select or create a company first"},
	{service.ErrEmailTaken, http.StatusConflict, "an account with this email already exists"},
	{service.ErrSlugTaken, http.StatusConflict, "this company slug is already in use"},
	{service.ErrAlreadyMember, http.StatusConflict, "the user is already a member"},
	{service.ErrLastOwner, http.StatusConflict, "the company must keep at least one owner"},
	{service.ErrStageNotEmpty, http.StatusConflict, "cannot remove stages with leads"},
	{service.ErrMFARequired, http.StatusConflict, "a TOTP code is required"},
	{service.ErrMFAAlreadyOn, http.StatusConflict, "MFA is already enabled"},
	{service.ErrInvalidGrant, http.StatusUnauthorized, "invalid credentials or refresh token"},
	{service.ErrInvalidOTP, http.StatusUnauthorized, "invalid TOTP code"},
	{service.ErrWrongPassword, http.StatusBadRequest, "current password is incorrect"},
	{service.ErrMFANotEnrolled, http.StatusBadRequest, "enroll before verifying"},
	{service.ErrMFANotEnabled, http.StatusBadRequest, "MFA is not enabled"},
}

// writeServiceError maps err to a JSON error response. Unknown errors are
// logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ValidationResponse{
			Code:    "validation_failed",
			Message: "request validation failed",
			Details: verr.Fields,
		})
		return
	}

	if errors.Is(err, service.ErrInvalidInput) {
		httpx.WriteError(w, http.StatusBadRequest, service.ErrInvalidInput.Error(), err.Error())
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			httpx.WriteError(w, m.status, m.err.Error(), m.desc)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed", "err", err)
	httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
}

// decode reads the JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(r, v); err != nil {
		slogx.FromContext(r.Context()).Debug("failed to parse request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	return true
}

// actor returns the caller acting in the tenant resolved by TenantMiddleware.
func actor(r *http.Request) domain.Actor {
	ctx := r.Context()
	t, _ := httpx.TenantFromContext(ctx)
	return domain.Actor{
		UserID:    httpx.UserIDFromContext(ctx),
		CompanyID: t.CompanyID,
		Role:      domain.Role(t.Role),
	}
}
