package service

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/idx"
)

// DetailService manages what hangs off a lead: notes, tags and custom
// fields. Child rows always carry their lead's company.
type DetailService struct {
	Store store.Store
}

type NoteInput struct {
	Content string `json:"content" example:"Pediu retorno na sexta."`
}

type TagInput struct {
	Label string `json:"label" example:"quente"`
	Color string `json:"color,omitempty" example:"#EF4444"`
}

type CustomFieldInput struct {
	Key   string `json:"key" example:"bairro"`
	Value string `json:"value" example:"Moema"`
}

// lead loads the parent lead, so a lead of another company reads as missing.
func (s *DetailService) lead(ctx context.Context, a domain.Actor, action domain.Action, leadID string) (domain.Lead, error) {
	if err := authorize(a, action); err != nil {
		return domain.Lead{}, err
	}
	l, err := s.Store.Leads().GetLead(ctx, a.CompanyID, leadID)
	return l, notFound(err)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		v := domain.ValidationError{}
		v.Add(field, "is required")
		return &v
	}
	return nil
}

// ListNotes returns the lead's notes newest first.
func (s *DetailService) ListNotes(ctx context.Context, a domain.Actor, leadID string) ([]domain.Note, error) {
	if _, err := s.lead(ctx, a, domain.ActionRead, leadID); err != nil {
		return nil, err
	}
	return s.Store.Notes().ListNotes(ctx, a.CompanyID, leadID)
}

func (s *DetailService) AddNote(ctx context.Context, a domain.Actor, leadID string, in NoteInput) (domain.Note, error) {
	l, err := s.lead(ctx, a, domain.ActionWriteLeads, leadID)
	if err != nil {
		return domain.Note{}, err
	}
	if err := required("content", in.Content); err != nil {
		return domain.Note{}, err
	}

	n := domain.Note{
		ID:        idx.NewString(),
		CompanyID: l.CompanyID,
		LeadID:    l.ID,
		AuthorID:  a.UserID,
		Content:   strings.TrimSpace(in.Content),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Notes().CreateNote(ctx, n); err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

func (s *DetailService) DeleteNote(ctx context.Context, a domain.Actor, id string) error {
	if err := authorize(a, domain.ActionWriteLeads); err != nil {
		return err
	}
	return notFound(s.Store.Notes().DeleteNote(ctx, a.CompanyID, id))
}

func (s *DetailService) ListTags(ctx context.Context, a domain.Actor, leadID string) ([]domain.Tag, error) {
	if _, err := s.lead(ctx, a, domain.ActionRead, leadID); err != nil {
		return nil, err
	}
	return s.Store.Tags().ListTags(ctx, a.CompanyID, leadID)
}

func (s *DetailService) AddTag(ctx context.Context, a domain.Actor, leadID string, in TagInput) (domain.Tag, error) {
	l, err := s.lead(ctx, a, domain.ActionWriteLeads, leadID)
	if err != nil {
		return domain.Tag{}, err
	}
	if err := required("label", in.Label); err != nil {
		return domain.Tag{}, err
	}
	color := strings.TrimSpace(in.Color)
	if color != "" {
		var v domain.ValidationError
		domain.ValidateColor(&v, "color", color)
		if err := v.Err(); err != nil {
			return domain.Tag{}, err
		}
	}

	t := domain.Tag{
		ID:        idx.NewString(),
		CompanyID: l.CompanyID,
		LeadID:    l.ID,
		Label:     strings.TrimSpace(in.Label),
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Tags().CreateTag(ctx, t); err != nil {
		return domain.Tag{}, err
	}
	return t, nil
}

func (s *DetailService) DeleteTag(ctx context.Context, a domain.Actor, id string) error {
	if err := authorize(a, domain.ActionWriteLeads); err != nil {
		return err
	}
	return notFound(s.Store.Tags().DeleteTag(ctx, a.CompanyID, id))
}

func (s *DetailService) ListCustomFields(ctx context.Context, a domain.Actor, leadID string) ([]domain.CustomField, error) {
	if _, err := s.lead(ctx, a, domain.ActionRead, leadID); err != nil {
		return nil, err
	}
	return s.Store.CustomFields().ListCustomFields(ctx, a.CompanyID, leadID)
}

func (s *DetailService) AddCustomField(ctx context.Context, a domain.Actor, leadID string, in CustomFieldInput) (domain.CustomField, error) {
	l, err := s.lead(ctx, a, domain.ActionWriteLeads, leadID)
	if err != nil {
		return domain.CustomField{}, err
	}
	if err := required("key", in.Key); err != nil {
		return domain.CustomField{}, err
	}

	f := domain.CustomField{
		ID:        idx.NewString(),
		CompanyID: l.CompanyID,
		LeadID:    l.ID,
		Key:       strings.TrimSpace(in.Key),
		Value:     in.Value,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.CustomFields().CreateCustomField(ctx, f); err != nil {
		return domain.CustomField{}, err
	}
	return f, nil
}

func (s *DetailService) DeleteCustomField(ctx context.Context, a domain.Actor, id string) error {
	if err := authorize(a, domain.ActionWriteLeads); err != nil {
		return err
	}
	return notFound(s.Store.CustomFields().DeleteCustomField(ctx, a.CompanyID, id))
}
