package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/crmsdk"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
)

type LeadHandler struct {
	LeadService *service.LeadService
}

// HandleList handles GET /v1/leads
//
//	@Summary	List leads
//	@Tags		Leads
//	@Security	BearerAuth
//	@Produce	json
//	@Param		stage_id	query	string	false	"Only leads in this stage"
//	@Success	200			{array}	domain.Lead	"Newest first"
//	@Router		/v1/leads [get].
func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	f := store.LeadFilter{StageID: r.URL.Query().Get("stage_id")}

	leads, err := h.LeadService.List(r.Context(), actor(r), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, leads)
}

// HandleCreate handles POST /v1/leads
//
//	@Summary		Create lead
//	@Description	Without stage_id the lead is placed in the first stage. Source defaults to "Facebook Marketplace".
//	@Tags			Leads
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.LeadInput	true	"Lead"
//	@Success		201		{object}	domain.Lead
//	@Failure		400		{object}	httpx.ValidationResponse	"Invalid fields"
//	@Failure		403		{object}	httpx.ErrorResponse			"Viewer role"
//	@Router			/v1/leads [post].
func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req service.LeadInput
	if !decode(w, r, &req) {
		return
	}

	l, err := h.LeadService.Create(r.Context(), actor(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, l)
}

// HandleGet handles GET /v1/leads/{id}
//
//	@Summary	Get lead
//	@Tags		Leads
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Lead id"
//	@Success	200	{object}	domain.Lead
//	@Failure	404	{object}	httpx.ErrorResponse	"Lead not found"
//	@Router		/v1/leads/{id} [get].
func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	l, err := h.LeadService.Get(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

// HandleUpdate handles PATCH /v1/leads/{id}
//
//	@Summary	Update lead
//	@Tags		Leads
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Lead id"
//	@Param		request	body		domain.LeadPatch	true	"Fields to change"
//	@Success	200		{object}	domain.Lead
//	@Failure	400		{object}	httpx.ValidationResponse	"Invalid fields"
//	@Failure	404		{object}	httpx.ErrorResponse			"Lead not found"
//	@Router		/v1/leads/{id} [patch].
func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req domain.LeadPatch
	if !decode(w, r, &req) {
		return
	}

	l, err := h.LeadService.Update(r.Context(), actor(r), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

// HandleMove handles PUT /v1/leads/{id}/stage
//
//	@Summary		Move lead to a stage
//	@Description	Last write wins. Moving to the current stage is a no-op.
//	@Tags			Leads
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Lead id"
//	@Param			request	body		crmsdk.MoveLeadRequest	true	"Target stage"
//	@Success		200		{object}	domain.Lead
//	@Failure		404		{object}	httpx.ErrorResponse	"Lead or stage not found"
//	@Router			/v1/leads/{id}/stage [put].
func (h *LeadHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.MoveLeadRequest
	if !decode(w, r, &req) {
		return
	}

	l, err := h.LeadService.Move(r.Context(), actor(r), r.PathValue("id"), req.StageID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

// HandleDelete handles DELETE /v1/leads/{id}
//
//	@Summary		Delete lead
//	@Description	Also deletes the lead's notes, tags and custom fields.
//	@Tags			Leads
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Lead id"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorResponse	"Lead not found"
//	@Router			/v1/leads/{id} [delete].
func (h *LeadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.LeadService.Delete(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
