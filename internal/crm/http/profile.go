package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/pkg/crmsdk"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
)

type ProfileHandler struct {
	ProfileService *service.ProfileService
	CompanyService *service.CompanyService
}

// HandleGet handles GET /v1/profile
//
//	@Summary	Get own profile
//	@Tags		Profile
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	domain.Profile
//	@Failure	401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Router		/v1/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProfileService.Get(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandleUpdate handles PATCH /v1/profile
//
//	@Summary	Update own profile
//	@Tags		Profile
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		service.ProfilePatch	true	"Fields to change"
//	@Success	200		{object}	domain.Profile
//	@Failure	400		{object}	httpx.ValidationResponse	"Invalid fields"
//	@Router		/v1/profile [patch].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req service.ProfilePatch
	if !decode(w, r, &req) {
		return
	}

	p, err := h.ProfileService.Update(r.Context(), httpx.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandleChangePassword handles POST /v1/profile/password
//
//	@Summary		Change password
//	@Description	Replaces the password and revokes every refresh token of the user.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	service.ChangePasswordInput	true	"Current and new password"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorResponse	"Wrong current password or weak new password"
//	@Router			/v1/profile/password [post].
func (h *ProfileHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req service.ChangePasswordInput
	if !decode(w, r, &req) {
		return
	}

	if err := h.ProfileService.ChangePassword(r.Context(), httpx.UserIDFromContext(r.Context()), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSwitchCompany handles POST /v1/profile/company
//
//	@Summary	Switch active company
//	@Tags		Profile
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		crmsdk.SwitchCompanyRequest	true	"Company to act in"
//	@Success	200		{object}	domain.Profile
//	@Failure	403		{object}	httpx.ErrorResponse	"Not a member"
//	@Router		/v1/profile/company [post].
func (h *ProfileHandler) HandleSwitchCompany(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.SwitchCompanyRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.CompanyService.SwitchActive(r.Context(), httpx.UserIDFromContext(r.Context()), req.CompanyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}
