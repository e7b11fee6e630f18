package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
)

const stageColumns = `id, company_id, name, color, position, created_at`

type stagesRepo struct{ conn }

func (r *stagesRepo) CreateStage(ctx context.Context, s domain.Stage) error {
	_, err := r.exec(ctx, `
		INSERT INTO stages (id, company_id, name, color, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.CompanyID, s.Name, s.Color, s.Position, s.CreatedAt)
	return err
}

func (r *stagesRepo) GetStage(ctx context.Context, companyID, id string) (domain.Stage, error) {
	var s domain.Stage
	err := r.get(ctx, &s,
		`SELECT `+stageColumns+` FROM stages WHERE company_id = ? AND id = ?`, companyID, id)
	return s, err
}

func (r *stagesRepo) ListStages(ctx context.Context, companyID string) ([]domain.Stage, error) {
	out := []domain.Stage{}
	err := r.selectAll(ctx, &out,
		`SELECT `+stageColumns+` FROM stages WHERE company_id = ? ORDER BY position, created_at, id`, companyID)
	return out, err
}

func (r *stagesRepo) UpdateStage(ctx context.Context, s domain.Stage) error {
	return r.execOne(ctx,
		`UPDATE stages SET name = ?, color = ? WHERE company_id = ? AND id = ?`,
		s.Name, s.Color, s.CompanyID, s.ID)
}

func (r *stagesRepo) SetPosition(ctx context.Context, companyID, id string, position int) error {
	return r.execOne(ctx,
		`UPDATE stages SET position = ? WHERE company_id = ? AND id = ?`, position, companyID, id)
}

func (r *stagesRepo) MaxPosition(ctx context.Context, companyID string) (int, error) {
	var n int
	err := r.get(ctx, &n, `SELECT COALESCE(MAX(position), 0) FROM stages WHERE company_id = ?`, companyID)
	return n, err
}

func (r *stagesRepo) DeleteStage(ctx context.Context, companyID, id string) error {
	return r.execOne(ctx, `DELETE FROM stages WHERE company_id = ? AND id = ?`, companyID, id)
}
