package domain

import "time"

const DefaultStageColor = "#8B5CF6"

// DefaultLeadSource is recorded when a lead is created without a source.
const DefaultLeadSource = "Facebook Marketplace"

type Stage struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Lead struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	StageID   *string   `db:"stage_id" json:"stage_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Value     float64   `db:"value" json:"value"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InStage reports whether the lead currently sits in stageID.
func (l Lead) InStage(stageID string) bool {
	return l.StageID != nil && *l.StageID == stageID
}

// LeadPatch is a partial lead update; nil fields are left unchanged.
type LeadPatch struct {
	Name   *string  `json:"name,omitempty"`
	Email  *string  `json:"email,omitempty"`
	Phone  *string  `json:"phone,omitempty"`
	Value  *float64 `json:"value,omitempty"`
	Source *string  `json:"source,omitempty"`
}

// Apply returns l with the patch applied.
func (p LeadPatch) Apply(l Lead) Lead {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.Value != nil {
		l.Value = *p.Value
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	return l
}

type Note struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	LeadID    string    `db:"lead_id" json:"lead_id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Tag struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	LeadID    string    `db:"lead_id" json:"lead_id"`
	Label     string    `db:"label" json:"label"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CustomField struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	LeadID    string    `db:"lead_id" json:"lead_id"`
	Key       string    `db:"field_key" json:"key"`
	Value     string    `db:"field_value" json:"value"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
