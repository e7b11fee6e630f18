package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
)

type companiesRepo struct{ conn }

func (r *companiesRepo) CreateCompany(ctx context.Context, c domain.Company) error {
	_, err := r.exec(ctx, `
		INSERT INTO companies (id, name, slug, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.OwnerID, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *companiesRepo) GetCompany(ctx context.Context, id string) (domain.Company, error) {
	var c domain.Company
	err := r.get(ctx, &c,
		`SELECT id, name, slug, owner_id, created_at, updated_at FROM companies WHERE id = ?`, id)
	return c, err
}

func (r *companiesRepo) RenameCompany(ctx context.Context, id, name string) error {
	return r.execOne(ctx,
		`UPDATE companies SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id)
}

func (r *companiesRepo) ListCompaniesForUser(ctx context.Context, userID string) ([]domain.CompanyWithRole, error) {
	out := []domain.CompanyWithRole{}
	err := r.selectAll(ctx, &out, `
		SELECT c.id, c.name, c.slug, c.owner_id, c.created_at, c.updated_at, m.role
		FROM companies c JOIN user_roles m ON m.company_id = c.id
		WHERE m.user_id = ?
		ORDER BY c.name, c.id`, userID)
	return out, err
}
