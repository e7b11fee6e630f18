package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/leadboard/internal/crm/cache"
	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/events"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/stretchr/testify/require"
)

func TestStageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")

	st, err := f.stages.Create(ctx, owner, StageInput{Name: "Visita"})
	require.NoError(t, err)
	require.Equal(t, 6, st.Position)
	require.Equal(t, domain.DefaultStageColor, st.Color)

	_, err = f.stages.Create(ctx, owner, StageInput{Name: "Bad", Color: "red"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	name := "Visita agendada"
	st, err = f.stages.Update(ctx, owner, st.ID, StagePatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, st.Name)

	stages, err := f.stages.List(ctx, owner)
	require.NoError(t, err)
	ids := make([]string, 0, len(stages))
	for i := len(stages) - 1; i >= 0; i-- {
		ids = append(ids, stages[i].ID)
	}

	_, err = f.stages.Reorder(ctx, owner, ids[:3])
	require.ErrorIs(t, err, ErrInvalidInput)
	dup := append([]string{ids[0]}, ids[:len(ids)-1]...)
	_, err = f.stages.Reorder(ctx, owner, dup)
	require.ErrorIs(t, err, ErrInvalidInput)

	reordered, err := f.stages.Reorder(ctx, owner, ids)
	require.NoError(t, err)
	require.Equal(t, st.ID, reordered[0].ID)

	stages, err = f.stages.List(ctx, owner)
	require.NoError(t, err)
	for i, s := range stages {
		require.Equal(t, ids[i], s.ID)
		require.Equal(t, i+1, s.Position)
	}

	require.NoError(t, f.stages.Delete(ctx, owner, st.ID))
	require.ErrorIs(t, f.stages.Delete(ctx, owner, st.ID), ErrNotFound)
}

func TestStageWithLeadsCannotBeDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")

	lead, err := f.leads.Create(ctx, owner, LeadInput{Name: "Carlos"})
	require.NoError(t, err)

	err = f.stages.Delete(ctx, owner, *lead.StageID)
	require.ErrorIs(t, err, ErrStageNotEmpty)

	require.NoError(t, f.leads.Delete(ctx, owner, lead.ID))
	require.NoError(t, f.stages.Delete(ctx, owner, *lead.StageID))
}

func TestRolesGateWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")
	agent := f.join(t, owner, "agent@example.com", domain.RoleAgent)
	viewer := f.join(t, owner, "viewer@example.com", domain.RoleViewer)

	_, err := f.leads.Create(ctx, viewer, LeadInput{Name: "Nope"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.stages.Create(ctx, agent, StageInput{Name: "Nope"})
	require.ErrorIs(t, err, ErrForbidden)

	lead, err := f.leads.Create(ctx, agent, LeadInput{Name: "Sim"})
	require.NoError(t, err)

	got, err := f.leads.Get(ctx, viewer, lead.ID)
	require.NoError(t, err)
	require.Equal(t, "Sim", got.Name)

	_, err = f.details.AddNote(ctx, viewer, lead.ID, NoteInput{Content: "x"})
	require.ErrorIs(t, err, ErrForbidden)

	// Role is checked before the input.
	_, err = f.details.AddNote(ctx, viewer, lead.ID, NoteInput{})
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.details.AddTag(ctx, viewer, lead.ID, TagInput{})
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.details.AddCustomField(ctx, viewer, lead.ID, CustomFieldInput{})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestLeadCreateDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")

	stages, err := f.stages.List(ctx, owner)
	require.NoError(t, err)

	lead, err := f.leads.Create(ctx, owner, LeadInput{Name: "  Carlos  ", Value: 1500})
	require.NoError(t, err)
	require.Equal(t, "Carlos", lead.Name)
	require.Equal(t, domain.DefaultLeadSource, lead.Source)
	require.True(t, lead.InStage(stages[0].ID))

	second := stages[1].ID
	lead, err = f.leads.Create(ctx, owner, LeadInput{Name: "Dora", Source: "Instagram", StageID: &second})
	require.NoError(t, err)
	require.True(t, lead.InStage(second))

	bogus := "01ARZ3NDEKTSV4RRFFQ69G5FAV"
	_, err = f.leads.Create(ctx, owner, LeadInput{Name: "Eva", StageID: &bogus})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "stage_id")

	_, err = f.leads.Create(ctx, owner, LeadInput{Name: "", Value: -5, Email: "nope"})
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 3)

	inSecond, err := f.leads.List(ctx, owner, store.LeadFilter{StageID: second})
	require.NoError(t, err)
	require.Len(t, inSecond, 1)

	require.Equal(t, []string{events.LeadCreated, events.LeadCreated}, f.events.Types())
}

func TestLeadUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")

	lead, err := f.leads.Create(ctx, owner, LeadInput{Name: "Carlos", Email: "c@example.com"})
	require.NoError(t, err)

	value := 2500.0
	phone := "+55 11 99999-0000"
	got, err := f.leads.Update(ctx, owner, lead.ID, domain.LeadPatch{Value: &value, Phone: &phone})
	require.NoError(t, err)
	require.InDelta(t, 2500, got.Value, 0.001)
	require.Equal(t, "c@example.com", got.Email)

	neg := -1.0
	_, err = f.leads.Update(ctx, owner, lead.ID, domain.LeadPatch{Value: &neg})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	stored, err := f.leads.Get(ctx, owner, lead.ID)
	require.NoError(t, err)
	require.Equal(t, phone, stored.Phone)
	require.Equal(t, []string{events.LeadCreated, events.LeadUpdated}, f.events.Types())
}

func TestMoveLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")

	stages, err := f.stages.List(ctx, owner)
	require.NoError(t, err)
	lead, err := f.leads.Create(ctx, owner, LeadInput{Name: "Carlos", Value: 100})
	require.NoError(t, err)

	moved, err := f.leads.Move(ctx, owner, lead.ID, stages[3].ID)
	require.NoError(t, err)
	require.True(t, moved.InStage(stages[3].ID))

	stored, err := f.leads.Get(ctx, owner, lead.ID)
	require.NoError(t, err)
	require.True(t, stored.InStage(stages[3].ID))

	evs := f.events.Events()
	require.Len(t, evs, 2)
	require.Equal(t, events.LeadStageChanged, evs[1].Type)
	require.Equal(t, stages[0].ID, evs[1].FromStage)
	require.Equal(t, stages[3].ID, evs[1].ToStage)
	require.Equal(t, owner.UserID, evs[1].ActorID)

	// Same stage: nothing happens.
	_, err = f.leads.Move(ctx, owner, lead.ID, stages[3].ID)
	require.NoError(t, err)
	require.Len(t, f.events.Events(), 2)

	_, err = f.leads.Move(ctx, owner, lead.ID, "")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.leads.Move(ctx, owner, lead.ID, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCrossTenantAccessReadsAsMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.onboard(t, "a@example.com", "Acme")
	beta := f.onboard(t, "b@example.com", "Beta")

	lead, err := f.leads.Create(ctx, acme, LeadInput{Name: "Carlos"})
	require.NoError(t, err)
	betaStages, err := f.stages.List(ctx, beta)
	require.NoError(t, err)

	_, err = f.leads.Get(ctx, beta, lead.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.leads.Move(ctx, beta, lead.ID, betaStages[1].ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.leads.Move(ctx, acme, lead.ID, betaStages[1].ID)
	require.ErrorIs(t, err, ErrNotFound, "stage of another company")
	require.ErrorIs(t, f.leads.Delete(ctx, beta, lead.ID), ErrNotFound)
	require.ErrorIs(t, f.stages.Delete(ctx, acme, betaStages[0].ID), ErrNotFound)

	_, err = f.details.ListNotes(ctx, beta, lead.ID)
	require.ErrorIs(t, err, ErrNotFound)

	leads, err := f.leads.List(ctx, beta, store.LeadFilter{})
	require.NoError(t, err)
	require.Empty(t, leads)
}

func TestLeadDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")
	lead, err := f.leads.Create(ctx, owner, LeadInput{Name: "Carlos"})
	require.NoError(t, err)

	_, err = f.details.AddNote(ctx, owner, lead.ID, NoteInput{Content: "  "})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "content")

	n1, err := f.details.AddNote(ctx, owner, lead.ID, NoteInput{Content: "primeiro contato"})
	require.NoError(t, err)
	require.Equal(t, owner.UserID, n1.AuthorID)
	n2, err := f.details.AddNote(ctx, owner, lead.ID, NoteInput{Content: "retornar"})
	require.NoError(t, err)

	notes, err := f.details.ListNotes(ctx, owner, lead.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, n2.ID, notes[0].ID, "newest first")

	tag, err := f.details.AddTag(ctx, owner, lead.ID, TagInput{Label: "quente", Color: "#EF4444"})
	require.NoError(t, err)
	_, err = f.details.AddTag(ctx, owner, lead.ID, TagInput{Label: "frio"})
	require.NoError(t, err)
	_, err = f.details.AddTag(ctx, owner, lead.ID, TagInput{Label: ""})
	require.ErrorAs(t, err, &verr)

	require.NoError(t, f.details.DeleteTag(ctx, owner, tag.ID))
	tags, err := f.details.ListTags(ctx, owner, lead.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	require.Equal(t, "frio", tags[0].Label)
	require.ErrorIs(t, f.details.DeleteTag(ctx, owner, tag.ID), ErrNotFound)

	field, err := f.details.AddCustomField(ctx, owner, lead.ID, CustomFieldInput{Key: "bairro", Value: "Moema"})
	require.NoError(t, err)
	fields, err := f.details.ListCustomFields(ctx, owner, lead.ID)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	require.Equal(t, "Moema", fields[0].Value)
	require.NoError(t, f.details.DeleteCustomField(ctx, owner, field.ID))

	require.NoError(t, f.details.DeleteNote(ctx, owner, n1.ID))
	require.NoError(t, f.leads.Delete(ctx, owner, lead.ID))
	_, err = f.details.ListTags(ctx, owner, lead.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDashboardIsCachedAndInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")

	stages, err := f.stages.List(ctx, owner)
	require.NoError(t, err)
	won := stages[len(stages)-1].ID

	lead, err := f.leads.Create(ctx, owner, LeadInput{Name: "Carlos", Value: 1000})
	require.NoError(t, err)
	_, err = f.leads.Create(ctx, owner, LeadInput{Name: "Dora", Value: 500, Source: "Instagram"})
	require.NoError(t, err)

	d, err := f.dashboard.Get(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, 2, d.LeadsTotal)
	require.Zero(t, d.WonValue)

	gen, err := cache.DashboardGeneration(ctx, f.cache, owner.CompanyID)
	require.NoError(t, err)
	var cached domain.Dashboard
	require.NoError(t, f.cache.Get(ctx, cache.DashboardKey(owner.CompanyID, gen), &cached))
	require.Equal(t, d.LeadsTotal, cached.LeadsTotal)

	_, err = f.leads.Move(ctx, owner, lead.ID, won)
	require.NoError(t, err)
	gen, err = cache.DashboardGeneration(ctx, f.cache, owner.CompanyID)
	require.NoError(t, err)
	err = f.cache.Get(ctx, cache.DashboardKey(owner.CompanyID, gen), &cached)
	require.ErrorIs(t, err, cache.ErrMiss)

	d, err = f.dashboard.Get(ctx, owner)
	require.NoError(t, err)
	require.InDelta(t, 1000, d.WonValue, 0.001)
	require.InDelta(t, 50, d.ConversionRate, 0.001)
	require.Len(t, d.Funnel, len(stages))
	require.Equal(t, 1, d.Funnel[len(stages)-1].Leads)
}

// listHookStore runs afterList once the dashboard has read its leads.
type listHookStore struct {
	store.Store
	afterList func()
}

func (s listHookStore) Leads() store.Leads {
	return listHookLeads{Leads: s.Store.Leads(), afterList: s.afterList}
}

type listHookLeads struct {
	store.Leads
	afterList func()
}

func (l listHookLeads) ListLeads(ctx context.Context, companyID string, f store.LeadFilter) ([]domain.Lead, error) {
	leads, err := l.Leads.ListLeads(ctx, companyID, f)
	if l.afterList != nil {
		l.afterList()
	}
	return leads, err
}

func TestDashboardFillDoesNotOutliveConcurrentMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")

	stages, err := f.stages.List(ctx, owner)
	require.NoError(t, err)
	won := stages[len(stages)-1].ID

	lead, err := f.leads.Create(ctx, owner, LeadInput{Name: "Carlos", Value: 100})
	require.NoError(t, err)

	moved := false
	dashboard := &DashboardService{
		Cache: f.cache,
		Store: listHookStore{Store: f.store, afterList: func() {
			if moved {
				return
			}
			moved = true
			_, err := f.leads.Move(ctx, owner, lead.ID, won)
			require.NoError(t, err)
		}},
	}

	// The first read loaded its leads before the move committed.
	d, err := dashboard.Get(ctx, owner)
	require.NoError(t, err)
	require.True(t, moved)
	require.Zero(t, d.WonValue)

	d, err = dashboard.Get(ctx, owner)
	require.NoError(t, err)
	require.InDelta(t, 100, d.WonValue, 0.001)
}

func TestPublishFailureDoesNotFailWrites(t *testing.T) {
	f := newFixture(t)
	f.leads.Events = &events.Memory{Err: errors.New("broker down")}
	owner := f.onboard(t, "owner@example.com", "Acme")

	_, err := f.leads.Create(context.Background(), owner, LeadInput{Name: "Carlos"})
	require.NoError(t, err)
}
