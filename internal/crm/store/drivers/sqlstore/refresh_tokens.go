package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
)

type refreshTokensRepo struct{ conn }

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, session_id, amr, expires_at, revoked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.SessionID, t.AMR, t.ExpiresAt, false, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.get(ctx, &t, `
		SELECT id, user_id, token_hash, session_id, amr, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens WHERE token_hash = ?`, hash)
	return t, err
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	return r.execOne(ctx,
		`UPDATE refresh_tokens SET revoked = ?, updated_at = ? WHERE token_hash = ? AND revoked = ?`,
		true, time.Now().UTC(), hash, false)
}

func (r *refreshTokensRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.exec(ctx,
		`UPDATE refresh_tokens SET revoked = ?, updated_at = ? WHERE user_id = ? AND revoked = ?`,
		true, time.Now().UTC(), userID, false)
	return err
}

func (r *refreshTokensRepo) DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ? OR revoked = ?`, now, true)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
