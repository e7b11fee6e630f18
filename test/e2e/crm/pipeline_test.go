package crm_test

import (
	"testing"

	"github.com/aussiebroadwan/leadboard/pkg/crmsdk"
	"github.com/stretchr/testify/require"
)

// TestBoardFlow drives onboarding, lead creation and a board move against a
// running container.
func TestBoardFlow(t *testing.T) {
	baseURL := setupCRMContainer(t, relaxedLimits)
	client := crmsdk.NewClient(baseURL)
	s := onboard(t, client, "ana@example.com", "Acme Imóveis")

	stages, err := s.Stages(t.Context())
	require.NoError(t, err)
	require.Len(t, stages, 5)

	lead, err := s.CreateLead(t.Context(), crmsdk.CreateLeadRequest{Name: "Carlos", Value: 1200})
	require.NoError(t, err)
	require.Equal(t, stages[0].ID, *lead.StageID)

	board := crmsdk.NewBoard(s)
	require.NoError(t, board.Refresh(t.Context()))
	require.NoError(t, board.MoveLead(t.Context(), lead.ID, stages[4].ID))

	cols := board.Columns()
	require.InDelta(t, 0, cols[0].Total, 0.001)
	require.InDelta(t, 1200, cols[4].Total, 0.001)

	dash, err := s.Dashboard(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, dash.LeadsTotal)
	require.InDelta(t, 1200, dash.WonValue, 0.001)

	err = s.DeleteStage(t.Context(), stages[4].ID)
	require.True(t, crmsdk.IsCode(err, crmsdk.ErrorCodeStageNotEmpty), "got %v", err)
}

// TestTenantIsolation verifies a second company cannot see the first's leads.
func TestTenantIsolation(t *testing.T) {
	baseURL := setupCRMContainer(t, relaxedLimits)
	client := crmsdk.NewClient(baseURL)

	ana := onboard(t, client, "ana@example.com", "Acme")
	bia := onboard(t, client, "bia@example.com", "Globex")

	lead, err := ana.CreateLead(t.Context(), crmsdk.CreateLeadRequest{Name: "Carlos"})
	require.NoError(t, err)

	_, err = bia.Lead(t.Context(), lead.ID)
	require.True(t, crmsdk.IsCode(err, crmsdk.ErrorCodeNotFound), "got %v", err)

	leads, err := bia.Leads(t.Context(), "")
	require.NoError(t, err)
	require.Empty(t, leads)
}

// TestRefreshRotation checks that a used refresh token cannot be replayed.
func TestRefreshRotation(t *testing.T) {
	baseURL := setupCRMContainer(t, relaxedLimits)
	client := crmsdk.NewClient(baseURL)

	s, err := client.Signup(t.Context(), crmsdk.SignupRequest{Email: "ana@example.com", Password: testPassword, FullName: "Ana"})
	require.NoError(t, err)

	first := s.RefreshToken()
	_, err = client.RefreshGrant(t.Context(), first)
	require.NoError(t, err)

	_, err = client.RefreshGrant(t.Context(), first)
	require.True(t, crmsdk.IsCode(err, crmsdk.ErrorCodeInvalidGrant), "got %v", err)
}
