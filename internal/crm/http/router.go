package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
	"github.com/aussiebroadwan/leadboard/pkg/jwtx"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"

	_ "github.com/aussiebroadwan/leadboard/api/crm" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limits are the rate-limit profiles applied per route group.
type Limits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
	Public   httpx.RateLimitConfig
}

// DefaultLimits returns the httpx profiles, including env overrides.
func DefaultLimits() Limits {
	return Limits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
		Public:   httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	Limits      Limits
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService      *service.AuthService
	MFAService       *service.MFAService
	CompanyService   *service.CompanyService
	MemberService    *service.MemberService
	ProfileService   *service.ProfileService
	StageService     *service.StageService
	LeadService      *service.LeadService
	DetailService    *service.DetailService
	DashboardService *service.DashboardService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		Limits:       DefaultLimits(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every route. Services must be set beforehand.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerProfile()
	r.registerCompanies()
	r.registerMembers()
	r.registerStages()
	r.registerLeads()
	r.registerLeadDetails()
	r.registerDashboard()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Leadboard CRM API
//	@version		0.1.0
//	@description	Multi-tenant sales pipeline: companies, stages, leads and their notes, tags and custom fields.
//	@description
//	@description				Access tokens are EdDSA-signed JWTs and can be verified using the JWKS endpoint.
//	@description				Tenant-scoped routes act on the caller's active company.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/leadboard
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed requires a valid access token.
func (r *Router) authed(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

// tenant requires a valid access token and an active company.
func (r *Router) tenant(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.TenantMiddleware(httpx.TenantResolverFunc(r.resolveTenant)),
		httpx.RateLimitByUser(limit),
	)
}

// admin is tenant restricted to owners and admins. Services repeat the check.
func (r *Router) admin(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.TenantMiddleware(httpx.TenantResolverFunc(r.resolveTenant)),
		httpx.RequireRole(string(domain.RoleOwner), string(domain.RoleAdmin)),
		httpx.RateLimitByUser(limit),
	)
}

// resolveTenant looks the role up on every request so membership changes
// apply without reissuing tokens.
func (r *Router) resolveTenant(ctx context.Context, userID string) (httpx.Tenant, error) {
	a, err := r.CompanyService.ResolveActor(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNoCompany) {
			return httpx.Tenant{}, httpx.ErrNoTenant
		}
		return httpx.Tenant{}, err
	}
	return httpx.Tenant{CompanyID: a.CompanyID, Role: string(a.Role)}, nil
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints: strict, keyed by IP and email to slow guessing.
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST /v1/mfa/totp/enroll", r.authed(h.HandleEnroll, r.Limits.Moderate))
	// Code checks are strict to prevent brute force of TOTP codes.
	r.Mux.Handle("POST /v1/mfa/totp/verify", r.authed(h.HandleVerify, r.Limits.Strict))
	r.Mux.Handle("DELETE /v1/mfa/totp", r.authed(h.HandleDisable, r.Limits.Strict))
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{ProfileService: r.ProfileService, CompanyService: r.CompanyService}

	r.Mux.Handle("GET /v1/profile", r.authed(h.HandleGet, r.Limits.Lenient))
	r.Mux.Handle("PATCH /v1/profile", r.authed(h.HandleUpdate, r.Limits.Moderate))
	r.Mux.Handle("POST /v1/profile/password", r.authed(h.HandleChangePassword, r.Limits.Strict))
	r.Mux.Handle("POST /v1/profile/company", r.authed(h.HandleSwitchCompany, r.Limits.Moderate))
}

func (r *Router) registerCompanies() {
	h := &CompanyHandler{CompanyService: r.CompanyService}

	// Onboarding works without an active company.
	r.Mux.Handle("POST /v1/companies", r.authed(h.HandleCreate, r.Limits.Moderate))
	r.Mux.Handle("GET /v1/companies", r.authed(h.HandleList, r.Limits.Lenient))

	r.Mux.Handle("GET /v1/company", r.tenant(h.HandleCurrent, r.Limits.Lenient))
	r.Mux.Handle("PATCH /v1/company", r.admin(h.HandleRename, r.Limits.Moderate))
}

func (r *Router) registerMembers() {
	h := &MemberHandler{MemberService: r.MemberService}

	r.Mux.Handle("GET /v1/members", r.tenant(h.HandleList, r.Limits.Lenient))
	r.Mux.Handle("POST /v1/members", r.admin(h.HandleAdd, r.Limits.Moderate))
	r.Mux.Handle("PATCH /v1/members/{user_id}", r.admin(h.HandleUpdateRole, r.Limits.Moderate))
	// Members may remove themselves, so the role check stays in the service.
	r.Mux.Handle("DELETE /v1/members/{user_id}", r.tenant(h.HandleRemove, r.Limits.Moderate))
}

func (r *Router) registerStages() {
	h := &StageHandler{StageService: r.StageService}

	r.Mux.Handle("GET /v1/stages", r.tenant(h.HandleList, r.Limits.Lenient))
	r.Mux.Handle("POST /v1/stages", r.admin(h.HandleCreate, r.Limits.Moderate))
	r.Mux.Handle("PUT /v1/stages/order", r.admin(h.HandleReorder, r.Limits.Moderate))
	r.Mux.Handle("PATCH /v1/stages/{id}", r.admin(h.HandleUpdate, r.Limits.Moderate))
	r.Mux.Handle("DELETE /v1/stages/{id}", r.admin(h.HandleDelete, r.Limits.Moderate))
}

func (r *Router) registerLeads() {
	h := &LeadHandler{LeadService: r.LeadService}

	r.Mux.Handle("GET /v1/leads", r.tenant(h.HandleList, r.Limits.Lenient))
	r.Mux.Handle("POST /v1/leads", r.tenant(h.HandleCreate, r.Limits.Moderate))
	r.Mux.Handle("GET /v1/leads/{id}", r.tenant(h.HandleGet, r.Limits.Lenient))
	r.Mux.Handle("PATCH /v1/leads/{id}", r.tenant(h.HandleUpdate, r.Limits.Moderate))
	// Board drags arrive in bursts.
	r.Mux.Handle("PUT /v1/leads/{id}/stage", r.tenant(h.HandleMove, r.Limits.Lenient))
	r.Mux.Handle("DELETE /v1/leads/{id}", r.tenant(h.HandleDelete, r.Limits.Moderate))
}

func (r *Router) registerLeadDetails() {
	h := &DetailHandler{DetailService: r.DetailService}

	r.Mux.Handle("GET /v1/leads/{id}/notes", r.tenant(h.HandleListNotes, r.Limits.Lenient))
	r.Mux.Handle("POST /v1/leads/{id}/notes", r.tenant(h.HandleAddNote, r.Limits.Moderate))
	r.Mux.Handle("DELETE /v1/notes/{id}", r.tenant(h.HandleDeleteNote, r.Limits.Moderate))

	r.Mux.Handle("GET /v1/leads/{id}/tags", r.tenant(h.HandleListTags, r.Limits.Lenient))
	r.Mux.Handle("POST /v1/leads/{id}/tags", r.tenant(h.HandleAddTag, r.Limits.Moderate))
	r.Mux.Handle("DELETE /v1/tags/{id}", r.tenant(h.HandleDeleteTag, r.Limits.Moderate))

	r.Mux.Handle("GET /v1/leads/{id}/fields", r.tenant(h.HandleListFields, r.Limits.Lenient))
	r.Mux.Handle("POST /v1/leads/{id}/fields", r.tenant(h.HandleAddField, r.Limits.Moderate))
	r.Mux.Handle("DELETE /v1/fields/{id}", r.tenant(h.HandleDeleteField, r.Limits.Moderate))
}

func (r *Router) registerDashboard() {
	h := &DashboardHandler{DashboardService: r.DashboardService}
	r.Mux.Handle("GET /v1/dashboard", r.tenant(h.HandleGet, r.Limits.Lenient))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
}
