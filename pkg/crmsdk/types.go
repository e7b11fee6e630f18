package crmsdk

import "time"

// ============================================================================
// Auth
// ============================================================================

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type TOTPEnrollResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
}

// CodeRequest carries a TOTP code.
type CodeRequest struct {
	Code string `json:"code" example:"123456"`
}

// ============================================================================
// Profile & companies
// ============================================================================

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CompanyID *string   `json:"company_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Role is set when listing the caller's companies.
	Role string `json:"role,omitempty"`
}

type CreateCompanyRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type RenameCompanyRequest struct {
	Name string `json:"name" example:"Acme Imóveis"`
}

type SwitchCompanyRequest struct {
	CompanyID string `json:"company_id"`
}

type Member struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" example:"admin"`
}

// ============================================================================
// Pipeline
// ============================================================================

type Stage struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateStageRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type UpdateStageRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

type ReorderStagesRequest struct {
	StageIDs []string `json:"stage_ids"`
}

type Lead struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	StageID   *string   `json:"stage_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Value     float64   `json:"value"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateLeadRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email,omitempty"`
	Phone   string  `json:"phone,omitempty"`
	Value   float64 `json:"value"`
	Source  string  `json:"source,omitempty"`
	StageID *string `json:"stage_id,omitempty"`
}

type UpdateLeadRequest struct {
	Name   *string  `json:"name,omitempty"`
	Email  *string  `json:"email,omitempty"`
	Phone  *string  `json:"phone,omitempty"`
	Value  *float64 `json:"value,omitempty"`
	Source *string  `json:"source,omitempty"`
}

type MoveLeadRequest struct {
	StageID string `json:"stage_id"`
}

type Note struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Tag struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	Label     string    `json:"label"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type CustomField struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type AddNoteRequest struct {
	Content string `json:"content"`
}

type AddTagRequest struct {
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

type AddCustomFieldRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Dashboard struct {
	LeadsTotal       int           `json:"leads_total"`
	WonValue         float64       `json:"won_value"`
	NegotiationValue float64       `json:"negotiation_value"`
	ConversionRate   float64       `json:"conversion_rate"`
	Funnel           []FunnelStage `json:"funnel"`
	Sources          []SourceCount `json:"sources"`
}

type FunnelStage struct {
	StageID string  `json:"stage_id"`
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	Leads   int     `json:"leads"`
	Value   float64 `json:"value"`
}

type SourceCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ============================================================================
// System
// ============================================================================

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
