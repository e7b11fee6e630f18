package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/pkg/crmsdk"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"
)

// MFAHandler handles all MFA-related endpoints.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll handles POST /v1/mfa/totp/enroll
//
//	@Summary		Enroll in TOTP MFA
//	@Description	Generates a TOTP secret for the authenticated user. MFA is enforced only after verification.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	domain.MFAEnrollment	"TOTP secret and otpauth URL"
//	@Failure		401	{object}	httpx.ErrorResponse		"Invalid or missing access token"
//	@Failure		409	{object}	httpx.ErrorResponse		"MFA already enabled"
//	@Router			/v1/mfa/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromContext(ctx)

	enr, err := h.MFAService.EnrollTOTP(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, enr)
}

// HandleVerify handles POST /v1/mfa/totp/verify
//
//	@Summary		Verify TOTP code and enable MFA
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	crmsdk.CodeRequest	true	"TOTP code"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorResponse	"Not enrolled"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid code or token"
//	@Router			/v1/mfa/totp/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromContext(ctx)

	var req crmsdk.CodeRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.MFAService.VerifyTOTP(ctx, userID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slogx.FromContext(ctx).Info("mfa enabled")
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles DELETE /v1/mfa/totp
//
//	@Summary		Disable TOTP MFA
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	crmsdk.CodeRequest	true	"Current TOTP code"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorResponse	"MFA not enabled"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid code or token"
//	@Router			/v1/mfa/totp [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromContext(ctx)

	var req crmsdk.CodeRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.MFAService.DisableTOTP(ctx, userID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slogx.FromContext(ctx).Info("mfa disabled")
	w.WriteHeader(http.StatusNoContent)
}
