package crmsdk

import (
	"context"
	"net/http"
	"net/url"
)

func leadPath(leadID, sub string) string {
	return "/v1/leads/" + url.PathEscape(leadID) + "/" + sub
}

// Notes lists a lead's notes, newest first.
func (s *Session) Notes(ctx context.Context, leadID string) ([]Note, error) {
	var notes []Note
	if err := s.getJSON(ctx, leadPath(leadID, "notes"), &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *Session) AddNote(ctx context.Context, leadID, content string) (*Note, error) {
	var n Note
	err := s.sendJSON(ctx, http.MethodPost, leadPath(leadID, "notes"), AddNoteRequest{Content: content}, &n, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Session) DeleteNote(ctx context.Context, id string) error {
	return s.sendJSON(ctx, http.MethodDelete, "/v1/notes/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (s *Session) Tags(ctx context.Context, leadID string) ([]Tag, error) {
	var tags []Tag
	if err := s.getJSON(ctx, leadPath(leadID, "tags"), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *Session) AddTag(ctx context.Context, leadID string, req AddTagRequest) (*Tag, error) {
	var t Tag
	if err := s.sendJSON(ctx, http.MethodPost, leadPath(leadID, "tags"), req, &t, http.StatusCreated); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Session) DeleteTag(ctx context.Context, id string) error {
	return s.sendJSON(ctx, http.MethodDelete, "/v1/tags/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (s *Session) CustomFields(ctx context.Context, leadID string) ([]CustomField, error) {
	var fields []CustomField
	if err := s.getJSON(ctx, leadPath(leadID, "fields"), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (s *Session) AddCustomField(ctx context.Context, leadID string, req AddCustomFieldRequest) (*CustomField, error) {
	var f CustomField
	if err := s.sendJSON(ctx, http.MethodPost, leadPath(leadID, "fields"), req, &f, http.StatusCreated); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Session) DeleteCustomField(ctx context.Context, id string) error {
	return s.sendJSON(ctx, http.MethodDelete, "/v1/fields/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}
