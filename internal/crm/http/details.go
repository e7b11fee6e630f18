package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
)

// DetailHandler serves a lead's notes, tags and custom fields.
type DetailHandler struct {
	DetailService *service.DetailService
}

// HandleListNotes handles GET /v1/leads/{id}/notes
//
//	@Summary	List notes
//	@Tags		Lead details
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path	string	true	"Lead id"
//	@Success	200	{array}	domain.Note	"Newest first"
//	@Router		/v1/leads/{id}/notes [get].
func (h *DetailHandler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.DetailService.ListNotes(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, notes)
}

// HandleAddNote handles POST /v1/leads/{id}/notes
//
//	@Summary	Add note
//	@Tags		Lead details
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Lead id"
//	@Param		request	body		service.NoteInput	true	"Note"
//	@Success	201		{object}	domain.Note
//	@Failure	400		{object}	httpx.ValidationResponse	"Empty content"
//	@Router		/v1/leads/{id}/notes [post].
func (h *DetailHandler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	var req service.NoteInput
	if !decode(w, r, &req) {
		return
	}

	n, err := h.DetailService.AddNote(r.Context(), actor(r), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, n)
}

// HandleDeleteNote handles DELETE /v1/notes/{id}
//
//	@Summary	Delete note
//	@Tags		Lead details
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Note id"
//	@Success	204
//	@Router		/v1/notes/{id} [delete].
func (h *DetailHandler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.DetailService.DeleteNote(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListTags handles GET /v1/leads/{id}/tags
//
//	@Summary	List tags
//	@Tags		Lead details
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path	string	true	"Lead id"
//	@Success	200	{array}	domain.Tag
//	@Router		/v1/leads/{id}/tags [get].
func (h *DetailHandler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.DetailService.ListTags(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tags)
}

// HandleAddTag handles POST /v1/leads/{id}/tags
//
//	@Summary	Add tag
//	@Tags		Lead details
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Lead id"
//	@Param		request	body		service.TagInput	true	"Tag"
//	@Success	201		{object}	domain.Tag
//	@Failure	400		{object}	httpx.ValidationResponse	"Empty label or bad color"
//	@Router		/v1/leads/{id}/tags [post].
func (h *DetailHandler) HandleAddTag(w http.ResponseWriter, r *http.Request) {
	var req service.TagInput
	if !decode(w, r, &req) {
		return
	}

	t, err := h.DetailService.AddTag(r.Context(), actor(r), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

// HandleDeleteTag handles DELETE /v1/tags/{id}
//
//	@Summary	Delete tag
//	@Tags		Lead details
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Tag id"
//	@Success	204
//	@Router		/v1/tags/{id} [delete].
func (h *DetailHandler) HandleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.DetailService.DeleteTag(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListFields handles GET /v1/leads/{id}/fields
//
//	@Summary	List custom fields
//	@Tags		Lead details
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path	string	true	"Lead id"
//	@Success	200	{array}	domain.CustomField
//	@Router		/v1/leads/{id}/fields [get].
func (h *DetailHandler) HandleListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.DetailService.ListCustomFields(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, fields)
}

// HandleAddField handles POST /v1/leads/{id}/fields
//
//	@Summary	Add custom field
//	@Tags		Lead details
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Lead id"
//	@Param		request	body		service.CustomFieldInput	true	"Field"
//	@Success	201		{object}	domain.CustomField
//	@Failure	400		{object}	httpx.ValidationResponse	"Empty key"
//	@Router		/v1/leads/{id}/fields [post].
func (h *DetailHandler) HandleAddField(w http.ResponseWriter, r *http.Request) {
	var req service.CustomFieldInput
	if !decode(w, r, &req) {
		return
	}

	f, err := h.DetailService.AddCustomField(r.Context(), actor(r), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, f)
}

// HandleDeleteField handles DELETE /v1/fields/{id}
//
//	@Summary	Delete custom field
//	@Tags		Lead details
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Custom field id"
//	@Success	204
//	@Router		/v1/fields/{id} [delete].
func (h *DetailHandler) HandleDeleteField(w http.ResponseWriter, r *http.Request) {
	if err := h.DetailService.DeleteCustomField(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
