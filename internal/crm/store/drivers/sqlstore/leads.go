package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
)

const leadColumns = `id, company_id, stage_id, name, email, phone, value, source, created_at, updated_at`

type leadsRepo struct{ conn }

func (r *leadsRepo) CreateLead(ctx context.Context, l domain.Lead) error {
	_, err := r.exec(ctx, `
		INSERT INTO leads (id, company_id, stage_id, name, email, phone, value, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.CompanyID, l.StageID, l.Name, l.Email, l.Phone, l.Value, l.Source, l.CreatedAt, l.UpdatedAt)
	return err
}

func (r *leadsRepo) GetLead(ctx context.Context, companyID, id string) (domain.Lead, error) {
	var l domain.Lead
	err := r.get(ctx, &l,
		`SELECT `+leadColumns+` FROM leads WHERE company_id = ? AND id = ?`, companyID, id)
	return l, err
}

func (r *leadsRepo) ListLeads(ctx context.Context, companyID string, f store.LeadFilter) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE company_id = ?`
	args := []any{companyID}
	if f.StageID != "" {
		query += ` AND stage_id = ?`
		args = append(args, f.StageID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	out := []domain.Lead{}
	err := r.selectAll(ctx, &out, query, args...)
	return out, err
}

func (r *leadsRepo) UpdateLead(ctx context.Context, l domain.Lead) error {
	return r.execOne(ctx, `
		UPDATE leads SET name = ?, email = ?, phone = ?, value = ?, source = ?, updated_at = ?
		WHERE company_id = ? AND id = ?`,
		l.Name, l.Email, l.Phone, l.Value, l.Source, l.UpdatedAt, l.CompanyID, l.ID)
}

func (r *leadsRepo) SetStage(ctx context.Context, companyID, id string, stageID *string, at time.Time) error {
	return r.execOne(ctx,
		`UPDATE leads SET stage_id = ?, updated_at = ? WHERE company_id = ? AND id = ?`,
		stageID, at, companyID, id)
}

func (r *leadsRepo) DeleteLead(ctx context.Context, companyID, id string) error {
	return r.execOne(ctx, `DELETE FROM leads WHERE company_id = ? AND id = ?`, companyID, id)
}

func (r *leadsRepo) CountInStage(ctx context.Context, companyID, stageID string) (int, error) {
	var n int
	err := r.get(ctx, &n,
		`SELECT COUNT(*) FROM leads WHERE company_id = ? AND stage_id = ?`, companyID, stageID)
	return n, err
}
