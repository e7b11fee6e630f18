package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
)

type profilesRepo struct{ conn }

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.exec(ctx, `
		INSERT INTO profiles (id, full_name, avatar_url, company_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.FullName, p.AvatarURL, p.CompanyID, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *profilesRepo) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	err := r.get(ctx, &p, `
		SELECT p.id, u.email, p.full_name, p.avatar_url, p.company_id, p.created_at, p.updated_at
		FROM profiles p JOIN users u ON u.id = p.id
		WHERE p.id = ?`, userID)
	return p, err
}

func (r *profilesRepo) UpdateProfile(ctx context.Context, userID, fullName, avatarURL string) error {
	return r.execOne(ctx,
		`UPDATE profiles SET full_name = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
		fullName, avatarURL, time.Now().UTC(), userID)
}

func (r *profilesRepo) SetActiveCompany(ctx context.Context, userID string, companyID *string) error {
	return r.execOne(ctx,
		`UPDATE profiles SET company_id = ?, updated_at = ? WHERE id = ?`,
		companyID, time.Now().UTC(), userID)
}
