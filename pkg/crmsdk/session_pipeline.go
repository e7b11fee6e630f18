package crmsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Stages lists the active company's stages in position order.
func (s *Session) Stages(ctx context.Context) ([]Stage, error) {
	var stages []Stage
	if err := s.getJSON(ctx, "/v1/stages", &stages); err != nil {
		return nil, err
	}
	return stages, nil
}

func (s *Session) CreateStage(ctx context.Context, req CreateStageRequest) (*Stage, error) {
	var st Stage
	if err := s.sendJSON(ctx, http.MethodPost, "/v1/stages", req, &st, http.StatusCreated); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Session) UpdateStage(ctx context.Context, id string, req UpdateStageRequest) (*Stage, error) {
	var st Stage
	if err := s.sendJSON(ctx, http.MethodPatch, "/v1/stages/"+url.PathEscape(id), req, &st, http.StatusOK); err != nil {
		return nil, err
	}
	return &st, nil
}

// ReorderStages assigns positions in the order of ids, which must list every
// stage of the company exactly once.
func (s *Session) ReorderStages(ctx context.Context, ids []string) ([]Stage, error) {
	var stages []Stage
	err := s.sendJSON(ctx, http.MethodPut, "/v1/stages/order", ReorderStagesRequest{StageIDs: ids}, &stages, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return stages, nil
}

// DeleteStage fails with ErrorCodeStageNotEmpty while leads reference the stage.
func (s *Session) DeleteStage(ctx context.Context, id string) error {
	return s.sendJSON(ctx, http.MethodDelete, "/v1/stages/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// Leads lists leads newest first. A non-empty stageID filters by stage.
func (s *Session) Leads(ctx context.Context, stageID string) ([]Lead, error) {
	path := "/v1/leads"
	if stageID != "" {
		path += "?" + url.Values{"stage_id": {stageID}}.Encode()
	}

	var leads []Lead
	if err := s.getJSON(ctx, path, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (s *Session) Lead(ctx context.Context, id string) (*Lead, error) {
	var l Lead
	if err := s.getJSON(ctx, "/v1/leads/"+url.PathEscape(id), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLead adds a lead. Without StageID it lands in the first stage.
func (s *Session) CreateLead(ctx context.Context, req CreateLeadRequest) (*Lead, error) {
	var l Lead
	if err := s.sendJSON(ctx, http.MethodPost, "/v1/leads", req, &l, http.StatusCreated); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Session) UpdateLead(ctx context.Context, id string, req UpdateLeadRequest) (*Lead, error) {
	var l Lead
	if err := s.sendJSON(ctx, http.MethodPatch, "/v1/leads/"+url.PathEscape(id), req, &l, http.StatusOK); err != nil {
		return nil, err
	}
	return &l, nil
}

// MoveLead sets the lead's stage on the server. Board.MoveLead wraps this
// with an optimistic local update.
func (s *Session) MoveLead(ctx context.Context, id, stageID string) (*Lead, error) {
	var l Lead
	err := s.sendJSON(ctx, http.MethodPut, "/v1/leads/"+url.PathEscape(id)+"/stage",
		MoveLeadRequest{StageID: stageID}, &l, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteLead removes the lead with its notes, tags and custom fields.
func (s *Session) DeleteLead(ctx context.Context, id string) error {
	return s.sendJSON(ctx, http.MethodDelete, "/v1/leads/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (s *Session) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := s.getJSON(ctx, "/v1/dashboard", &d); err != nil {
		return nil, err
	}
	return &d, nil
}
