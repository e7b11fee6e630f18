package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/pkg/crmsdk"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
)

type StageHandler struct {
	StageService *service.StageService
}

// HandleList handles GET /v1/stages
//
//	@Summary	List stages
//	@Tags		Stages
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	domain.Stage	"Stages in position order"
//	@Router		/v1/stages [get].
func (h *StageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	stages, err := h.StageService.List(r.Context(), actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stages)
}

// HandleCreate handles POST /v1/stages
//
//	@Summary		Create stage
//	@Description	Appends a stage after the last one. Color defaults to #8B5CF6.
//	@Tags			Stages
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.StageInput	true	"Stage"
//	@Success		201		{object}	domain.Stage
//	@Failure		400		{object}	httpx.ValidationResponse	"Invalid fields"
//	@Failure		403		{object}	httpx.ErrorResponse			"Owner or admin only"
//	@Router			/v1/stages [post].
func (h *StageHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req service.StageInput
	if !decode(w, r, &req) {
		return
	}

	st, err := h.StageService.Create(r.Context(), actor(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, st)
}

// HandleUpdate handles PATCH /v1/stages/{id}
//
//	@Summary	Update stage
//	@Tags		Stages
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Stage id"
//	@Param		request	body		service.StagePatch	true	"Fields to change"
//	@Success	200		{object}	domain.Stage
//	@Failure	404		{object}	httpx.ErrorResponse	"Stage not found"
//	@Router		/v1/stages/{id} [patch].
func (h *StageHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req service.StagePatch
	if !decode(w, r, &req) {
		return
	}

	st, err := h.StageService.Update(r.Context(), actor(r), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

// HandleReorder handles PUT /v1/stages/order
//
//	@Summary		Reorder stages
//	@Description	Assigns positions 1..n in the given order. The list must contain every stage exactly once.
//	@Tags			Stages
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	crmsdk.ReorderStagesRequest	true	"Stage ids in the new order"
//	@Success		200		{array}	domain.Stage
//	@Failure		400		{object}	httpx.ErrorResponse	"Not the exact set of stages"
//	@Router			/v1/stages/order [put].
func (h *StageHandler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.ReorderStagesRequest
	if !decode(w, r, &req) {
		return
	}

	stages, err := h.StageService.Reorder(r.Context(), actor(r), req.StageIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stages)
}

// HandleDelete handles DELETE /v1/stages/{id}
//
//	@Summary	Delete stage
//	@Tags		Stages
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Stage id"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorResponse	"Stage not found"
//	@Failure	409	{object}	httpx.ErrorResponse	"Stage still has leads"
//	@Router		/v1/stages/{id} [delete].
func (h *StageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.StageService.Delete(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
