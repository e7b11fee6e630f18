package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/cache"
	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/events"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/idx"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"
)

// LeadService owns leads and their stage transitions. Every mutation drops
// the company's cached dashboard and publishes a lead event.
type LeadService struct {
	Store  store.Store
	Cache  cache.Cache
	Events events.Publisher
}

type LeadInput struct {
	Name   string  `json:"name" example:"Carlos Lima"`
	Email  string  `json:"email,omitempty" example:"carlos@example.com"`
	Phone  string  `json:"phone,omitempty" example:"+55 11 91234-5678"`
	Value  float64 `json:"value" example:"1500"`
	Source string  `json:"source,omitempty" example:"Instagram"`
	// StageID defaults to the first stage of the pipeline.
	StageID *string `json:"stage_id,omitempty"`
}

func (s *LeadService) List(ctx context.Context, a domain.Actor, f store.LeadFilter) ([]domain.Lead, error) {
	if err := authorize(a, domain.ActionRead); err != nil {
		return nil, err
	}
	return s.Store.Leads().ListLeads(ctx, a.CompanyID, f)
}

func (s *LeadService) Get(ctx context.Context, a domain.Actor, id string) (domain.Lead, error) {
	if err := authorize(a, domain.ActionRead); err != nil {
		return domain.Lead{}, err
	}
	l, err := s.Store.Leads().GetLead(ctx, a.CompanyID, id)
	return l, notFound(err)
}

// Create adds a lead. Without a source the default source is recorded, and
// without a stage the lead lands in the first stage.
func (s *LeadService) Create(ctx context.Context, a domain.Actor, in LeadInput) (domain.Lead, error) {
	if err := authorize(a, domain.ActionWriteLeads); err != nil {
		return domain.Lead{}, err
	}

	now := time.Now().UTC()
	lead := domain.Lead{
		ID:        idx.NewString(),
		CompanyID: a.CompanyID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Value:     in.Value,
		Source:    strings.TrimSpace(in.Source),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if lead.Source == "" {
		lead.Source = domain.DefaultLeadSource
	}
	if err := domain.ValidateLead(lead); err != nil {
		return domain.Lead{}, err
	}

	stageID, err := s.resolveStage(ctx, a.CompanyID, in.StageID)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.StageID = stageID

	if err := s.Store.Leads().CreateLead(ctx, lead); err != nil {
		return domain.Lead{}, err
	}

	invalidateDashboard(ctx, s.Cache, a.CompanyID)
	publish(ctx, s.Events, events.Event{
		Type:       events.LeadCreated,
		CompanyID:  a.CompanyID,
		LeadID:     lead.ID,
		ActorID:    a.UserID,
		ToStage:    deref(lead.StageID),
		OccurredAt: now,
	})
	return lead, nil
}

// resolveStage returns the requested stage when it belongs to the company,
// or the first stage when none was requested. A company without stages
// yields nil.
func (s *LeadService) resolveStage(ctx context.Context, companyID string, requested *string) (*string, error) {
	if requested != nil && *requested != "" {
		st, err := s.Store.Stages().GetStage(ctx, companyID, *requested)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				v := domain.ValidationError{}
				v.Add("stage_id", "unknown stage")
				return nil, &v
			}
			return nil, err
		}
		return &st.ID, nil
	}

	stages, err := s.Store.Stages().ListStages(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, nil
	}
	return &stages[0].ID, nil
}

func (s *LeadService) Update(ctx context.Context, a domain.Actor, id string, patch domain.LeadPatch) (domain.Lead, error) {
	if err := authorize(a, domain.ActionWriteLeads); err != nil {
		return domain.Lead{}, err
	}

	current, err := s.Store.Leads().GetLead(ctx, a.CompanyID, id)
	if err != nil {
		return domain.Lead{}, notFound(err)
	}

	lead := patch.Apply(current)
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Email = strings.TrimSpace(lead.Email)
	lead.Phone = strings.TrimSpace(lead.Phone)
	lead.Source = strings.TrimSpace(lead.Source)
	lead.UpdatedAt = time.Now().UTC()
	if err := domain.ValidateLead(lead); err != nil {
		return domain.Lead{}, err
	}
	if err := s.Store.Leads().UpdateLead(ctx, lead); err != nil {
		return domain.Lead{}, notFound(err)
	}

	invalidateDashboard(ctx, s.Cache, a.CompanyID)
	publish(ctx, s.Events, events.Event{
		Type:       events.LeadUpdated,
		CompanyID:  a.CompanyID,
		LeadID:     lead.ID,
		ActorID:    a.UserID,
		OccurredAt: lead.UpdatedAt,
	})
	return lead, nil
}

// Move places the lead in stageID. Both must belong to the actor's company.
// Moving a lead to the stage it is already in changes nothing. Concurrent
// moves are last write wins.
func (s *LeadService) Move(ctx context.Context, a domain.Actor, id, stageID string) (domain.Lead, error) {
	if err := authorize(a, domain.ActionWriteLeads); err != nil {
		return domain.Lead{}, err
	}
	if strings.TrimSpace(stageID) == "" {
		return domain.Lead{}, fmt.Errorf("%w: stage_id is required", ErrInvalidInput)
	}

	lead, err := s.Store.Leads().GetLead(ctx, a.CompanyID, id)
	if err != nil {
		return domain.Lead{}, notFound(err)
	}
	if _, err := s.Store.Stages().GetStage(ctx, a.CompanyID, stageID); err != nil {
		return domain.Lead{}, notFound(err)
	}
	if lead.InStage(stageID) {
		return lead, nil
	}

	from := deref(lead.StageID)
	now := time.Now().UTC()
	if err := s.Store.Leads().SetStage(ctx, a.CompanyID, id, &stageID, now); err != nil {
		return domain.Lead{}, notFound(err)
	}
	lead.StageID = &stageID
	lead.UpdatedAt = now

	slogx.FromContext(ctx).Debug("lead moved",
		slog.String("lead_id", id), slog.String("from", from), slog.String("to", stageID))

	invalidateDashboard(ctx, s.Cache, a.CompanyID)
	publish(ctx, s.Events, events.Event{
		Type:       events.LeadStageChanged,
		CompanyID:  a.CompanyID,
		LeadID:     id,
		ActorID:    a.UserID,
		FromStage:  from,
		ToStage:    stageID,
		OccurredAt: now,
	})
	return lead, nil
}

// Delete removes the lead with its notes, tags and custom fields.
func (s *LeadService) Delete(ctx context.Context, a domain.Actor, id string) error {
	if err := authorize(a, domain.ActionWriteLeads); err != nil {
		return err
	}
	if err := s.Store.Leads().DeleteLead(ctx, a.CompanyID, id); err != nil {
		return notFound(err)
	}

	invalidateDashboard(ctx, s.Cache, a.CompanyID)
	publish(ctx, s.Events, events.Event{
		Type:       events.LeadDeleted,
		CompanyID:  a.CompanyID,
		LeadID:     id,
		ActorID:    a.UserID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
