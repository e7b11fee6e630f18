package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/pkg/crmsdk"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
)

type MemberHandler struct {
	MemberService *service.MemberService
}

// HandleList handles GET /v1/members
//
//	@Summary	List members
//	@Tags		Members
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	domain.Member
//	@Router		/v1/members [get].
func (h *MemberHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.MemberService.List(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// HandleAdd handles POST /v1/members
//
//	@Summary		Add member
//	@Description	Grants an existing user a role in the active company. Only owners may grant owner.
//	@Tags			Members
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.AddMemberInput	true	"User email and role"
//	@Success		201		{object}	domain.Member
//	@Failure		403		{object}	httpx.ErrorResponse	"Insufficient role"
//	@Failure		404		{object}	httpx.ErrorResponse	"No user with that email"
//	@Failure		409		{object}	httpx.ErrorResponse	"Already a member"
//	@Router			/v1/members [post].
func (h *MemberHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req service.AddMemberInput
	if !decode(w, r, &req) {
		return
	}

	m, err := h.MemberService.Add(r.Context(), actor(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

// HandleUpdateRole handles PATCH /v1/members/{user_id}
//
//	@Summary	Change member role
//	@Tags		Members
//	@Security	BearerAuth
//	@Accept		json
//	@Param		user_id	path	string						true	"Member user id"
//	@Param		request	body	crmsdk.UpdateRoleRequest	true	"New role"
//	@Success	204
//	@Failure	403	{object}	httpx.ErrorResponse	"Insufficient role"
//	@Failure	409	{object}	httpx.ErrorResponse	"Last owner"
//	@Router		/v1/members/{user_id} [patch].
func (h *MemberHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.UpdateRoleRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.MemberService.UpdateRole(r.Context(), actor(r), r.PathValue("user_id"), domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemove handles DELETE /v1/members/{user_id}
//
//	@Summary		Remove member
//	@Description	Members may always remove themselves.
//	@Tags			Members
//	@Security		BearerAuth
//	@Param			user_id	path	string	true	"Member user id"
//	@Success		204
//	@Failure		409	{object}	httpx.ErrorResponse	"Last owner"
//	@Router			/v1/members/{user_id} [delete].
func (h *MemberHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.MemberService.Remove(r.Context(), actor(r), r.PathValue("user_id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
