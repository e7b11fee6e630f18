package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
)

const userColumns = `id, email, password_hash, mfa_secret, mfa_enabled_at, created_at, updated_at`

type usersRepo struct{ conn }

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return u, err
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return u, err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.execOne(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC(), userID)
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID, secret string) error {
	return r.execOne(ctx,
		`UPDATE users SET mfa_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), userID)
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, at time.Time) error {
	return r.execOne(ctx,
		`UPDATE users SET mfa_enabled_at = ?, updated_at = ? WHERE id = ? AND mfa_secret IS NOT NULL`,
		at, at, userID)
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	return r.execOne(ctx,
		`UPDATE users SET mfa_secret = NULL, mfa_enabled_at = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
}
