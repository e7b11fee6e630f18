package domain

// Role is a user's role within one company.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleAgent  Role = "agent"
	RoleViewer Role = "viewer"
)

// Action is something a role may be allowed to do.
type Action int

const (
	ActionRead Action = iota
	ActionWriteLeads
	ActionManageStages
	ActionManageMembers
	ActionManageCompany
)

var permissions = map[Role][]Action{
	RoleOwner:  {ActionRead, ActionWriteLeads, ActionManageStages, ActionManageMembers, ActionManageCompany},
	RoleAdmin:  {ActionRead, ActionWriteLeads, ActionManageStages, ActionManageMembers, ActionManageCompany},
	RoleAgent:  {ActionRead, ActionWriteLeads},
	RoleViewer: {ActionRead},
}

// Can reports whether r permits a.
func (r Role) Can(a Action) bool {
	for _, allowed := range permissions[r] {
		if allowed == a {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool {
	_, ok := permissions[r]
	return ok
}

// Actor is an authenticated user acting inside a company.
type Actor struct {
	UserID    string
	CompanyID string
	Role      Role
}

func (a Actor) Can(action Action) bool { return a.Role.Can(action) }
