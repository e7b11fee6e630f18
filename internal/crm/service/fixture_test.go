package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/leadboard/internal/crm/cache"
	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/events"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/internal/crm/store/drivers/sqlite"
	"github.com/aussiebroadwan/leadboard/pkg/cryptox"
	"github.com/aussiebroadwan/leadboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// fastHasher keeps argon2 cheap in tests.
var fastHasher = &cryptox.Hasher{
	Pepper: "test-pepper",
	Params: cryptox.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16},
}

type fixture struct {
	store  store.Store
	cache  *cache.Memory
	events *events.Memory

	auth      *AuthService
	mfa       *MFAService
	companies *CompanyService
	members   *MemberService
	profiles  *ProfileService
	stages    *StageService
	leads     *LeadService
	details   *DetailService
	dashboard *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	km, err := jwtx.NewEphemeralKeyManager()
	require.NoError(t, err)

	c := cache.NewMemory()
	ev := &events.Memory{}

	return &fixture{
		store:     st,
		cache:     c,
		events:    ev,
		auth:      &AuthService{Store: st, Hasher: fastHasher, KeyManager: km, Issuer: "https://crm.test"},
		mfa:       &MFAService{Store: st, Issuer: "Leadboard"},
		companies: &CompanyService{Store: st},
		members:   &MemberService{Store: st},
		profiles:  &ProfileService{Store: st, Hasher: fastHasher},
		stages:    &StageService{Store: st, Cache: c},
		leads:     &LeadService{Store: st, Cache: c, Events: ev},
		details:   &DetailService{Store: st},
		dashboard: &DashboardService{Store: st, Cache: c},
	}
}

// signup registers a user and returns their id.
func (f *fixture) signup(t *testing.T, email string) string {
	t.Helper()
	pair, err := f.auth.Signup(context.Background(), SignupInput{
		Email: email, Password: "password123", FullName: "User " + email,
	})
	require.NoError(t, err)

	claims, err := f.auth.Verifier().Verify(pair.AccessToken)
	require.NoError(t, err)
	return claims.Subject
}

// onboard signs up an owner and creates their company.
func (f *fixture) onboard(t *testing.T, email, company string) domain.Actor {
	t.Helper()
	userID := f.signup(t, email)
	_, err := f.companies.Create(context.Background(), userID, CreateCompanyInput{Name: company})
	require.NoError(t, err)

	a, err := f.companies.ResolveActor(context.Background(), userID)
	require.NoError(t, err)
	return a
}

// join adds a new user to a's company with role and returns them as an actor.
func (f *fixture) join(t *testing.T, a domain.Actor, email string, role domain.Role) domain.Actor {
	t.Helper()
	ctx := context.Background()
	userID := f.signup(t, email)
	_, err := f.members.Add(ctx, a, AddMemberInput{Email: email, Role: role})
	require.NoError(t, err)
	_, err = f.companies.SwitchActive(ctx, userID, a.CompanyID)
	require.NoError(t, err)

	m, err := f.companies.ResolveActor(ctx, userID)
	require.NoError(t, err)
	return m
}
