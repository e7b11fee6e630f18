package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Açaí & Cia":              "acai-cia",
		"  Imobiliária São João ": "imobiliaria-sao-joao",
		"ACME--Corp!!":            "acme-corp",
		"---":                     "",
		"Loja 24h":                "loja-24h",
	}
	for in, want := range cases {
		require.Equal(t, want, domain.Slugify(in), "input %q", in)
	}
}

func TestValidateCompany(t *testing.T) {
	require.NoError(t, domain.ValidateCompany("Acme", "acme"))

	err := domain.ValidateCompany("A", "Acme Corp")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "name")
	require.Contains(t, verr.Fields, "slug")

	require.Error(t, domain.ValidateCompany("Acme", "a"))
}

func TestValidateLead(t *testing.T) {
	require.NoError(t, domain.ValidateLead(domain.Lead{Name: "Ana"}))

	err := domain.ValidateLead(domain.Lead{Name: " ", Value: -1, Email: "nope"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 3)
}

func TestRolePermissions(t *testing.T) {
	require.True(t, domain.RoleViewer.Can(domain.ActionRead))
	require.False(t, domain.RoleViewer.Can(domain.ActionWriteLeads))
	require.True(t, domain.RoleAgent.Can(domain.ActionWriteLeads))
	require.False(t, domain.RoleAgent.Can(domain.ActionManageStages))
	require.True(t, domain.RoleAdmin.Can(domain.ActionManageMembers))
	require.True(t, domain.RoleOwner.Can(domain.ActionManageCompany))
	require.False(t, domain.Role("guest").Can(domain.ActionRead))
	require.False(t, domain.Role("guest").Valid())
}

func TestLeadPatchApply(t *testing.T) {
	name := "Bruno"
	value := 10.5
	got := domain.LeadPatch{Name: &name, Value: &value}.Apply(domain.Lead{Name: "Ana", Email: "a@x.io"})
	require.Equal(t, "Bruno", got.Name)
	require.Equal(t, "a@x.io", got.Email)
	require.InDelta(t, 10.5, got.Value, 0.0001)
}

func ptr(s string) *string { return &s }

func TestComputeDashboard(t *testing.T) {
	stages := []domain.Stage{
		{ID: "s1", Name: "Novo Lead", Color: "#8B5CF6", Position: 1},
		{ID: "s2", Name: "Em negociação", Color: "#10B981", Position: 2},
		{ID: "s3", Name: "Negócio Fechado", Color: "#22C55E", Position: 3},
	}
	leads := []domain.Lead{
		{ID: "l1", StageID: ptr("s1"), Value: 100, Source: "Instagram"},
		{ID: "l2", StageID: ptr("s2"), Value: 200, Source: "Instagram"},
		{ID: "l3", StageID: ptr("s3"), Value: 300, Source: ""},
		{ID: "l4", StageID: nil, Value: 50, Source: "Facebook Marketplace"},
	}

	got := domain.ComputeDashboard(stages, leads)
	want := domain.Dashboard{
		LeadsTotal:       4,
		WonValue:         300,
		NegotiationValue: 200,
		ConversionRate:   25,
		Funnel: []domain.FunnelStage{
			{StageID: "s1", Name: "Novo Lead", Color: "#8B5CF6", Leads: 1, Value: 100},
			{StageID: "s2", Name: "Em negociação", Color: "#10B981", Leads: 1, Value: 200},
			{StageID: "s3", Name: "Negócio Fechado", Color: "#22C55E", Leads: 1, Value: 300},
		},
		Sources: []domain.SourceCount{
			{Name: "Instagram", Value: 2},
			{Name: "Facebook Marketplace", Value: 1},
			{Name: domain.UnknownSource, Value: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("dashboard mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeDashboardFallsBackToStagePosition(t *testing.T) {
	stages := []domain.Stage{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	leads := []domain.Lead{
		{StageID: ptr("c"), Value: 10},
		{StageID: ptr("b"), Value: 5},
		{StageID: ptr("a"), Value: 1},
	}

	got := domain.ComputeDashboard(stages, leads)
	require.InDelta(t, 10, got.WonValue, 0.0001)
	require.InDelta(t, 5, got.NegotiationValue, 0.0001)
	require.InDelta(t, 33.3, got.ConversionRate, 0.0001)
}

func TestComputeDashboardEmpty(t *testing.T) {
	got := domain.ComputeDashboard(nil, nil)
	require.Zero(t, got.LeadsTotal)
	require.Zero(t, got.ConversionRate)
	require.Empty(t, got.Sources)
}
