package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
)

type notesRepo struct{ conn }

func (r *notesRepo) CreateNote(ctx context.Context, n domain.Note) error {
	_, err := r.exec(ctx, `
		INSERT INTO notes (id, company_id, lead_id, author_id, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.CompanyID, n.LeadID, n.AuthorID, n.Content, n.CreatedAt)
	return err
}

func (r *notesRepo) ListNotes(ctx context.Context, companyID, leadID string) ([]domain.Note, error) {
	out := []domain.Note{}
	err := r.selectAll(ctx, &out, `
		SELECT id, company_id, lead_id, author_id, content, created_at
		FROM notes WHERE company_id = ? AND lead_id = ?
		ORDER BY created_at DESC, id DESC`, companyID, leadID)
	return out, err
}

func (r *notesRepo) DeleteNote(ctx context.Context, companyID, id string) error {
	return r.execOne(ctx, `DELETE FROM notes WHERE company_id = ? AND id = ?`, companyID, id)
}

type tagsRepo struct{ conn }

func (r *tagsRepo) CreateTag(ctx context.Context, t domain.Tag) error {
	_, err := r.exec(ctx, `
		INSERT INTO tags (id, company_id, lead_id, label, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.CompanyID, t.LeadID, t.Label, t.Color, t.CreatedAt)
	return err
}

func (r *tagsRepo) ListTags(ctx context.Context, companyID, leadID string) ([]domain.Tag, error) {
	out := []domain.Tag{}
	err := r.selectAll(ctx, &out, `
		SELECT id, company_id, lead_id, label, color, created_at
		FROM tags WHERE company_id = ? AND lead_id = ?
		ORDER BY created_at, id`, companyID, leadID)
	return out, err
}

func (r *tagsRepo) DeleteTag(ctx context.Context, companyID, id string) error {
	return r.execOne(ctx, `DELETE FROM tags WHERE company_id = ? AND id = ?`, companyID, id)
}

type customFieldsRepo struct{ conn }

func (r *customFieldsRepo) CreateCustomField(ctx context.Context, f domain.CustomField) error {
	_, err := r.exec(ctx, `
		INSERT INTO custom_fields (id, company_id, lead_id, field_key, field_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.CompanyID, f.LeadID, f.Key, f.Value, f.CreatedAt)
	return err
}

func (r *customFieldsRepo) ListCustomFields(ctx context.Context, companyID, leadID string) ([]domain.CustomField, error) {
	out := []domain.CustomField{}
	err := r.selectAll(ctx, &out, `
		SELECT id, company_id, lead_id, field_key, field_value, created_at
		FROM custom_fields WHERE company_id = ? AND lead_id = ?
		ORDER BY created_at, id`, companyID, leadID)
	return out, err
}

func (r *customFieldsRepo) DeleteCustomField(ctx context.Context, companyID, id string) error {
	return r.execOne(ctx, `DELETE FROM custom_fields WHERE company_id = ? AND id = ?`, companyID, id)
}
