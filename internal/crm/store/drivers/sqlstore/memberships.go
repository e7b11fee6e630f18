package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
)

type membershipsRepo struct{ conn }

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	_, err := r.exec(ctx, `
		INSERT INTO user_roles (id, user_id, company_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.CompanyID, m.Role, m.CreatedAt)
	return err
}

func (r *membershipsRepo) GetMembership(ctx context.Context, companyID, userID string) (domain.Membership, error) {
	var m domain.Membership
	err := r.get(ctx, &m, `
		SELECT id, user_id, company_id, role, created_at
		FROM user_roles WHERE company_id = ? AND user_id = ?`, companyID, userID)
	return m, err
}

func (r *membershipsRepo) ListMembers(ctx context.Context, companyID string) ([]domain.Member, error) {
	out := []domain.Member{}
	err := r.selectAll(ctx, &out, `
		SELECT m.user_id, u.email, p.full_name, m.role, m.created_at
		FROM user_roles m
		JOIN users u ON u.id = m.user_id
		JOIN profiles p ON p.id = m.user_id
		WHERE m.company_id = ?
		ORDER BY m.created_at, m.user_id`, companyID)
	return out, err
}

func (r *membershipsRepo) UpdateRole(ctx context.Context, companyID, userID string, role domain.Role) error {
	return r.execOne(ctx,
		`UPDATE user_roles SET role = ? WHERE company_id = ? AND user_id = ?`,
		role, companyID, userID)
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, companyID, userID string) error {
	return r.execOne(ctx,
		`DELETE FROM user_roles WHERE company_id = ? AND user_id = ?`, companyID, userID)
}

func (r *membershipsRepo) CountByRole(ctx context.Context, companyID string, role domain.Role) (int, error) {
	var n int
	err := r.get(ctx, &n,
		`SELECT COUNT(*) FROM user_roles WHERE company_id = ? AND role = ?`, companyID, role)
	return n, err
}
