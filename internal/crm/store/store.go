package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict reports a write rejected by a reference, e.g. deleting a
	// stage that leads still point at.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface, implemented by the sqlite and
// postgres drivers. Sub-repositories are reached through methods so a Tx can
// hand out the same repositories bound to the transaction.
//
// Every pipeline repository takes the company id explicitly and scopes its
// queries by it. A row of another company behaves exactly like a missing row.
type Store interface {
	Users() Users
	Profiles() Profiles
	Companies() Companies
	Memberships() Memberships
	Stages() Stages
	Leads() Leads
	Notes() Notes
	Tags() Tags
	CustomFields() CustomFields
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a Store bound to one transaction. WithTx on a Tx fails; nested
// transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	// GetUserByEmail expects an already normalised address.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	UpdateMFASecret(ctx context.Context, userID, secret string) error
	EnableMFA(ctx context.Context, userID string, at time.Time) error
	// DisableMFA clears both the secret and the enabled timestamp.
	DisableMFA(ctx context.Context, userID string) error
}

type Profiles interface {
	CreateProfile(ctx context.Context, p domain.Profile) error
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	UpdateProfile(ctx context.Context, userID, fullName, avatarURL string) error
	// SetActiveCompany points the profile at companyID, or clears it when nil.
	SetActiveCompany(ctx context.Context, userID string, companyID *string) error
}

type Companies interface {
	CreateCompany(ctx context.Context, c domain.Company) error
	GetCompany(ctx context.Context, id string) (domain.Company, error)
	RenameCompany(ctx context.Context, id, name string) error
	// ListCompaniesForUser returns the companies userID is a member of.
	ListCompaniesForUser(ctx context.Context, userID string) ([]domain.CompanyWithRole, error)
}

type Memberships interface {
	CreateMembership(ctx context.Context, m domain.Membership) error
	GetMembership(ctx context.Context, companyID, userID string) (domain.Membership, error)
	ListMembers(ctx context.Context, companyID string) ([]domain.Member, error)
	UpdateRole(ctx context.Context, companyID, userID string, role domain.Role) error
	DeleteMembership(ctx context.Context, companyID, userID string) error
	CountByRole(ctx context.Context, companyID string, role domain.Role) (int, error)
}

type Stages interface {
	CreateStage(ctx context.Context, s domain.Stage) error
	GetStage(ctx context.Context, companyID, id string) (domain.Stage, error)
	// ListStages returns stages ordered by position.
	ListStages(ctx context.Context, companyID string) ([]domain.Stage, error)
	UpdateStage(ctx context.Context, s domain.Stage) error
	SetPosition(ctx context.Context, companyID, id string, position int) error
	MaxPosition(ctx context.Context, companyID string) (int, error)
	// DeleteStage fails with ErrConflict while leads reference the stage.
	DeleteStage(ctx context.Context, companyID, id string) error
}

type LeadFilter struct {
	StageID string
}

type Leads interface {
	CreateLead(ctx context.Context, l domain.Lead) error
	GetLead(ctx context.Context, companyID, id string) (domain.Lead, error)
	// ListLeads returns leads newest first.
	ListLeads(ctx context.Context, companyID string, f LeadFilter) ([]domain.Lead, error)
	UpdateLead(ctx context.Context, l domain.Lead) error
	SetStage(ctx context.Context, companyID, id string, stageID *string, at time.Time) error
	// DeleteLead cascades to notes, tags and custom fields.
	DeleteLead(ctx context.Context, companyID, id string) error
	CountInStage(ctx context.Context, companyID, stageID string) (int, error)
}

type Notes interface {
	CreateNote(ctx context.Context, n domain.Note) error
	// ListNotes returns the lead's notes newest first.
	ListNotes(ctx context.Context, companyID, leadID string) ([]domain.Note, error)
	DeleteNote(ctx context.Context, companyID, id string) error
}

type Tags interface {
	CreateTag(ctx context.Context, t domain.Tag) error
	ListTags(ctx context.Context, companyID, leadID string) ([]domain.Tag, error)
	DeleteTag(ctx context.Context, companyID, id string) error
}

type CustomFields interface {
	CreateCustomField(ctx context.Context, f domain.CustomField) error
	ListCustomFields(ctx context.Context, companyID, leadID string) ([]domain.CustomField, error)
	DeleteCustomField(ctx context.Context, companyID, id string) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)
	// RevokeRefreshToken flips revoked; ErrNotFound when it was not active.
	RevokeRefreshToken(ctx context.Context, hash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	// DeleteStaleRefreshTokens removes tokens expired or revoked before now.
	DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}
