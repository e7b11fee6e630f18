package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/stretchr/testify/require"
)

func TestOnboarding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.signup(t, "owner@example.com")

	_, err := f.companies.ResolveActor(ctx, userID)
	require.ErrorIs(t, err, ErrNoCompany)

	c, err := f.companies.Create(ctx, userID, CreateCompanyInput{Name: "Imobiliária São João"})
	require.NoError(t, err)
	require.Equal(t, "imobiliaria-sao-joao", c.Slug)
	require.Equal(t, userID, c.OwnerID)

	a, err := f.companies.ResolveActor(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, domain.Actor{UserID: userID, CompanyID: c.ID, Role: domain.RoleOwner}, a)

	stages, err := f.stages.List(ctx, a)
	require.NoError(t, err)
	require.Len(t, stages, len(domain.DefaultStages))
	for i, st := range stages {
		require.Equal(t, domain.DefaultStages[i].Name, st.Name)
		require.Equal(t, domain.DefaultStages[i].Color, st.Color)
		require.Equal(t, i+1, st.Position)
	}

	list, err := f.companies.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, domain.RoleOwner, list[0].Role)
}

func TestOnboardingRejectsDuplicateSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.onboard(t, "first@example.com", "Acme")

	other := f.signup(t, "second@example.com")
	_, err := f.companies.Create(ctx, other, CreateCompanyInput{Name: "ACME!"})
	require.ErrorIs(t, err, ErrSlugTaken)

	// The failed transaction left nothing behind.
	_, err = f.companies.ResolveActor(ctx, other)
	require.ErrorIs(t, err, ErrNoCompany)

	_, err = f.companies.Create(ctx, other, CreateCompanyInput{Name: "A", Slug: "Bad Slug"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "name")
	require.Contains(t, verr.Fields, "slug")
}

func TestRenameAndSwitchCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "o@example.com", "Acme")
	agent := f.join(t, owner, "agent@example.com", domain.RoleAgent)

	_, err := f.companies.Rename(ctx, agent, "Acme Ltda")
	require.ErrorIs(t, err, ErrForbidden)

	c, err := f.companies.Rename(ctx, owner, "Acme Ltda")
	require.NoError(t, err)
	require.Equal(t, "Acme Ltda", c.Name)
	require.Equal(t, "acme", c.Slug)

	other := f.onboard(t, "p@example.com", "Beta")
	_, err = f.companies.SwitchActive(ctx, agent.UserID, other.CompanyID)
	require.ErrorIs(t, err, ErrNotMember)

	// Creating a second company moves the owner to it.
	_, err = f.companies.Create(ctx, owner.UserID, CreateCompanyInput{Name: "Gamma"})
	require.NoError(t, err)
	a, err := f.companies.ResolveActor(ctx, owner.UserID)
	require.NoError(t, err)
	require.NotEqual(t, owner.CompanyID, a.CompanyID)

	p, err := f.companies.SwitchActive(ctx, owner.UserID, owner.CompanyID)
	require.NoError(t, err)
	require.Equal(t, owner.CompanyID, *p.CompanyID)
}

func TestMemberRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")
	admin := f.join(t, owner, "admin@example.com", domain.RoleAdmin)
	agent := f.join(t, owner, "agent@example.com", domain.RoleAgent)

	members, err := f.members.List(ctx, agent)
	require.NoError(t, err)
	require.Len(t, members, 3)

	f.signup(t, "new@example.com")
	_, err = f.members.Add(ctx, agent, AddMemberInput{Email: "new@example.com", Role: domain.RoleViewer})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.members.Add(ctx, admin, AddMemberInput{Email: "new@example.com", Role: domain.RoleOwner})
	require.ErrorIs(t, err, ErrForbidden, "only owners grant owner")

	_, err = f.members.Add(ctx, admin, AddMemberInput{Email: "new@example.com", Role: "boss"})
	require.ErrorIs(t, err, ErrInvalidInput)

	m, err := f.members.Add(ctx, admin, AddMemberInput{Email: "NEW@example.com", Role: domain.RoleViewer})
	require.NoError(t, err)
	require.Equal(t, domain.RoleViewer, m.Role)

	_, err = f.members.Add(ctx, admin, AddMemberInput{Email: "new@example.com", Role: domain.RoleViewer})
	require.ErrorIs(t, err, ErrAlreadyMember)

	_, err = f.members.Add(ctx, admin, AddMemberInput{Email: "ghost@example.com", Role: domain.RoleViewer})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.members.UpdateRole(ctx, admin, agent.UserID, domain.RoleViewer))
	viewer, err := f.companies.ResolveActor(ctx, agent.UserID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleViewer, viewer.Role, "role changes apply on the next resolve")
}

func TestLastOwnerIsProtected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.onboard(t, "owner@example.com", "Acme")
	admin := f.join(t, owner, "admin@example.com", domain.RoleAdmin)

	require.ErrorIs(t, f.members.UpdateRole(ctx, owner, owner.UserID, domain.RoleAdmin), ErrLastOwner)
	require.ErrorIs(t, f.members.Remove(ctx, owner, owner.UserID), ErrLastOwner)
	require.ErrorIs(t, f.members.Remove(ctx, admin, owner.UserID), ErrForbidden)

	require.NoError(t, f.members.UpdateRole(ctx, owner, admin.UserID, domain.RoleOwner))
	require.NoError(t, f.members.UpdateRole(ctx, owner, owner.UserID, domain.RoleAdmin))

	// Leaving clears the active company.
	newOwner, err := f.companies.ResolveActor(ctx, admin.UserID)
	require.NoError(t, err)
	require.NoError(t, f.members.Remove(ctx, newOwner, owner.UserID))
	_, err = f.companies.ResolveActor(ctx, owner.UserID)
	require.ErrorIs(t, err, ErrNoCompany)
}
