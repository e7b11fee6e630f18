package domain

import "time"

// Company is the tenant boundary. Every pipeline row belongs to exactly one.
type Company struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Membership grants a user a role in a company.
type Membership struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Member is a membership joined with the member's profile.
type Member struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CompanyWithRole is a company as seen by one of its members.
type CompanyWithRole struct {
	Company
	Role Role `db:"role" json:"role"`
}

type StageTemplate struct {
	Name  string
	Color string
}

// DefaultStages seeds the pipeline of every new company, in order.
var DefaultStages = []StageTemplate{
	{Name: "Novo Lead", Color: "#8B5CF6"},
	{Name: "Contato Inicial", Color: "#06B6D4"},
	{Name: "Proposta Enviada", Color: "#F59E0B"},
	{Name: "Negociação", Color: "#10B981"},
	{Name: "Fechado", Color: "#22C55E"},
}
