package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/pkg/crmsdk"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
)

type CompanyHandler struct {
	CompanyService *service.CompanyService
}

// HandleCreate handles POST /v1/companies
//
//	@Summary		Create company
//	@Description	Onboards a company owned by the caller, seeds the default pipeline stages and makes it the active company. The slug is derived from the name when omitted.
//	@Tags			Companies
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.CreateCompanyInput	true	"Company"
//	@Success		201		{object}	domain.Company
//	@Failure		400		{object}	httpx.ValidationResponse	"Invalid name or slug"
//	@Failure		409		{object}	httpx.ErrorResponse			"Slug taken"
//	@Router			/v1/companies [post].
func (h *CompanyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCompanyInput
	if !decode(w, r, &req) {
		return
	}

	c, err := h.CompanyService.Create(r.Context(), httpx.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

// HandleList handles GET /v1/companies
//
//	@Summary	List own companies
//	@Tags		Companies
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	domain.CompanyWithRole
//	@Router		/v1/companies [get].
func (h *CompanyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.CompanyService.List(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// HandleCurrent handles GET /v1/company
//
//	@Summary	Get active company
//	@Tags		Companies
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	domain.Company
//	@Failure	403	{object}	httpx.ErrorResponse	"No active company"
//	@Router		/v1/company [get].
func (h *CompanyHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	c, err := h.CompanyService.Current(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

// HandleRename handles PATCH /v1/company
//
//	@Summary	Rename active company
//	@Tags		Companies
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		crmsdk.RenameCompanyRequest	true	"New name"
//	@Success	200		{object}	domain.Company
//	@Failure	403		{object}	httpx.ErrorResponse	"Owner or admin only"
//	@Router		/v1/company [patch].
func (h *CompanyHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.RenameCompanyRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.CompanyService.Rename(r.Context(), actor(r), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}
