package crmsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateCompany onboards a new company with the caller as owner and makes it
// the active company. An empty slug is derived from the name.
func (s *Session) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*Company, error) {
	var c Company
	if err := s.sendJSON(ctx, http.MethodPost, "/v1/companies", req, &c, http.StatusCreated); err != nil {
		return nil, err
	}
	return &c, nil
}

// Companies lists the companies the caller belongs to, with their role.
func (s *Session) Companies(ctx context.Context) ([]Company, error) {
	var cs []Company
	if err := s.getJSON(ctx, "/v1/companies", &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// CurrentCompany returns the active company.
func (s *Session) CurrentCompany(ctx context.Context) (*Company, error) {
	var c Company
	if err := s.getJSON(ctx, "/v1/company", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Session) RenameCompany(ctx context.Context, name string) (*Company, error) {
	var c Company
	err := s.sendJSON(ctx, http.MethodPatch, "/v1/company", RenameCompanyRequest{Name: name}, &c, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Session) Members(ctx context.Context) ([]Member, error) {
	var ms []Member
	if err := s.getJSON(ctx, "/v1/members", &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// AddMember grants an existing user a role in the active company.
func (s *Session) AddMember(ctx context.Context, req AddMemberRequest) (*Member, error) {
	var m Member
	if err := s.sendJSON(ctx, http.MethodPost, "/v1/members", req, &m, http.StatusCreated); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Session) UpdateMemberRole(ctx context.Context, userID, role string) error {
	return s.sendJSON(ctx, http.MethodPatch, "/v1/members/"+url.PathEscape(userID),
		UpdateRoleRequest{Role: role}, nil, http.StatusNoContent)
}

func (s *Session) RemoveMember(ctx context.Context, userID string) error {
	return s.sendJSON(ctx, http.MethodDelete, "/v1/members/"+url.PathEscape(userID), nil, nil, http.StatusNoContent)
}
