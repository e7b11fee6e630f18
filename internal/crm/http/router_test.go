package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/cache"
	"github.com/aussiebroadwan/leadboard/internal/crm/events"
	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/internal/crm/store/drivers/sqlite"
	"github.com/aussiebroadwan/leadboard/pkg/crmsdk"
	"github.com/aussiebroadwan/leadboard/pkg/cryptox"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
	"github.com/aussiebroadwan/leadboard/pkg/jwtx"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var testHasher = &cryptox.Hasher{
	Pepper: "test-pepper",
	Params: cryptox.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16},
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	st, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	km, err := jwtx.NewEphemeralKeyManager()
	require.NoError(t, err)

	c := cache.NewMemory()
	auth := &service.AuthService{Store: st, Hasher: testHasher, KeyManager: km, Issuer: "https://crm.test"}

	r := NewRouter(km.KeySet(), auth.Verifier(), "test", st, slogx.Discard())
	generous := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	r.Limits = Limits{Strict: generous, Moderate: generous, Lenient: generous, Public: generous}

	r.AuthService = auth
	r.MFAService = &service.MFAService{Store: st, Issuer: "Leadboard"}
	r.CompanyService = &service.CompanyService{Store: st}
	r.MemberService = &service.MemberService{Store: st}
	r.ProfileService = &service.ProfileService{Store: st, Hasher: testHasher}
	r.StageService = &service.StageService{Store: st, Cache: c}
	r.LeadService = &service.LeadService{Store: st, Cache: c, Events: &events.Memory{}}
	r.DetailService = &service.DetailService{Store: st}
	r.DashboardService = &service.DashboardService{Store: st, Cache: c}
	r.ApplyRoutes()
	return r
}

// call performs a request and decodes a JSON response into out when non-nil.
func call(t *testing.T, h http.Handler, method, path, token string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	if body.Error != "" {
		return body.Error
	}
	return body.Code
}

// signupWithCompany returns an access token for a fresh user owning company.
func signupWithCompany(t *testing.T, h http.Handler, email, company string) string {
	t.Helper()

	var tok crmsdk.TokenResponse
	rec := call(t, h, http.MethodPost, "/v1/auth/signup", "", crmsdk.SignupRequest{
		Email: email, Password: "password123", FullName: "Test User",
	}, &tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	if company != "" {
		rec = call(t, h, http.MethodPost, "/v1/companies", tok.AccessToken, crmsdk.CreateCompanyRequest{Name: company}, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	return tok.AccessToken
}

func TestPipelineOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := signupWithCompany(t, r, "ana@example.com", "Acme Imóveis")

	var company crmsdk.Company
	rec := call(t, r, http.MethodGet, "/v1/company", token, nil, &company)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "acme-imoveis", company.Slug)

	var stages []crmsdk.Stage
	rec = call(t, r, http.MethodGet, "/v1/stages", token, nil, &stages)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stages, 5)
	won := stages[4]
	require.Equal(t, "Fechado", won.Name)

	var lead crmsdk.Lead
	rec = call(t, r, http.MethodPost, "/v1/leads", token, crmsdk.CreateLeadRequest{Name: "Carlos", Value: 1500}, &lead)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, lead.StageID)
	require.Equal(t, stages[0].ID, *lead.StageID)
	require.Equal(t, "Facebook Marketplace", lead.Source)

	rec = call(t, r, http.MethodPut, "/v1/leads/"+lead.ID+"/stage", token, crmsdk.MoveLeadRequest{StageID: won.ID}, &lead)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, won.ID, *lead.StageID)

	var inWon []crmsdk.Lead
	rec = call(t, r, http.MethodGet, "/v1/leads?stage_id="+won.ID, token, nil, &inWon)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, inWon, 1)

	var dash crmsdk.Dashboard
	rec = call(t, r, http.MethodGet, "/v1/dashboard", token, nil, &dash)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, dash.LeadsTotal)
	require.InDelta(t, 1500, dash.WonValue, 0.001)
	require.InDelta(t, 100, dash.ConversionRate, 0.001)

	rec = call(t, r, http.MethodDelete, "/v1/stages/"+won.ID, token, nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, crmsdk.ErrorCodeStageNotEmpty, errorCode(t, rec))

	rec = call(t, r, http.MethodDelete, "/v1/leads/"+lead.ID, token, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = call(t, r, http.MethodGet, "/v1/leads/"+lead.ID, token, nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeadDetailsOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	token := signupWithCompany(t, r, "ana@example.com", "Acme")

	var lead crmsdk.Lead
	rec := call(t, r, http.MethodPost, "/v1/leads", token, crmsdk.CreateLeadRequest{Name: "Carlos"}, &lead)
	require.Equal(t, http.StatusCreated, rec.Code)

	var tag crmsdk.Tag
	rec = call(t, r, http.MethodPost, "/v1/leads/"+lead.ID+"/tags", token, map[string]string{"label": "quente"}, &tag)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, r, http.MethodPost, "/v1/leads/"+lead.ID+"/notes", token, map[string]string{"content": ""}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, crmsdk.ErrorCodeValidation, errorCode(t, rec))

	rec = call(t, r, http.MethodDelete, "/v1/tags/"+tag.ID, token, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var tags []crmsdk.Tag
	rec = call(t, r, http.MethodGet, "/v1/leads/"+lead.ID+"/tags", token, nil, &tags)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, tags)
}

func TestAuthAndTenantGuards(t *testing.T) {
	r := newTestRouter(t)

	rec := call(t, r, http.MethodGet, "/v1/leads", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, crmsdk.ErrorCodeInvalidToken, errorCode(t, rec))

	loner := signupWithCompany(t, r, "loner@example.com", "")
	rec = call(t, r, http.MethodGet, "/v1/leads", loner, nil, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, crmsdk.ErrorCodeNoCompany, errorCode(t, rec))

	// Profile works without a company.
	rec = call(t, r, http.MethodGet, "/v1/profile", loner, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, r, http.MethodPost, "/v1/auth/login", "", crmsdk.LoginRequest{
		Email: "loner@example.com", Password: "wrong-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, crmsdk.ErrorCodeInvalidGrant, errorCode(t, rec))
}

func TestAdminRoutesRejectAgents(t *testing.T) {
	r := newTestRouter(t)
	owner := signupWithCompany(t, r, "ana@example.com", "Acme")
	agent := signupWithCompany(t, r, "bruno@example.com", "")

	var company crmsdk.Company
	rec := call(t, r, http.MethodGet, "/v1/company", owner, nil, &company)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, r, http.MethodPost, "/v1/members", owner, crmsdk.AddMemberRequest{Email: "bruno@example.com", Role: "agent"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = call(t, r, http.MethodPost, "/v1/profile/company", agent, crmsdk.SwitchCompanyRequest{CompanyID: company.ID}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Rejected on role before the body is decoded.
	rec = call(t, r, http.MethodPost, "/v1/stages", agent, map[string]any{"name": "x", "unknown": 1}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, crmsdk.ErrorCodeForbidden, errorCode(t, rec))

	rec = call(t, r, http.MethodPatch, "/v1/company", agent, crmsdk.RenameCompanyRequest{Name: "Mine"}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, r, http.MethodPost, "/v1/members", agent, crmsdk.AddMemberRequest{Email: "ana@example.com", Role: "owner"}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, r, http.MethodPost, "/v1/leads", agent, crmsdk.CreateLeadRequest{Name: "Carlos"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var profile crmsdk.Profile
	rec = call(t, r, http.MethodGet, "/v1/profile", agent, nil, &profile)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, r, http.MethodDelete, "/v1/members/"+profile.ID, agent, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}

func TestCrossTenantLeadIsNotFound(t *testing.T) {
	r := newTestRouter(t)
	ana := signupWithCompany(t, r, "ana@example.com", "Acme")
	bia := signupWithCompany(t, r, "bia@example.com", "Globex")

	var lead crmsdk.Lead
	rec := call(t, r, http.MethodPost, "/v1/leads", ana, crmsdk.CreateLeadRequest{Name: "Carlos"}, &lead)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, r, http.MethodGet, "/v1/leads/"+lead.ID, bia, nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, r, http.MethodDelete, "/v1/leads/"+lead.ID, bia, nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestValidation(t *testing.T) {
	r := newTestRouter(t)
	token := signupWithCompany(t, r, "ana@example.com", "Acme")

	rec := call(t, r, http.MethodPost, "/v1/leads", token, crmsdk.CreateLeadRequest{Name: "", Value: -1}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body httpx.ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "validation_failed", body.Code)
	require.Contains(t, body.Details, "name")
	require.Contains(t, body.Details, "value")

	rec = call(t, r, http.MethodPost, "/v1/stages", token, map[string]any{"name": "x", "unknown": 1}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, crmsdk.ErrorCodeInvalidRequest, errorCode(t, rec))
}

func TestHealthAndJWKS(t *testing.T) {
	r := newTestRouter(t)

	var health crmsdk.HealthResponse
	rec := call(t, r, http.MethodGet, "/readyz", "", nil, &health)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)

	var jwks jwtx.JWKS
	rec = call(t, r, http.MethodGet, "/.well-known/jwks.json", "", nil, &jwks)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, jwks.Keys, 1)
}
