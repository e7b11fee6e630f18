package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/cryptox"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"
)

type ProfileService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *ProfileService) Get(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := s.Store.Profiles().GetProfile(ctx, userID)
	return p, notFound(err)
}

func (s *ProfileService) Update(ctx context.Context, userID string, patch ProfilePatch) (domain.Profile, error) {
	p, err := s.Store.Profiles().GetProfile(ctx, userID)
	if err != nil {
		return domain.Profile{}, notFound(err)
	}

	var v domain.ValidationError
	if patch.FullName != nil {
		p.FullName = strings.TrimSpace(*patch.FullName)
		if p.FullName == "" {
			v.Add("full_name", "is required")
		}
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*patch.AvatarURL)
		if p.AvatarURL != "" {
			if u, err := url.Parse(p.AvatarURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				v.Add("avatar_url", "must be an http(s) URL")
			}
		}
	}
	if err := v.Err(); err != nil {
		return domain.Profile{}, err
	}

	if err := s.Store.Profiles().UpdateProfile(ctx, userID, p.FullName, p.AvatarURL); err != nil {
		return domain.Profile{}, notFound(err)
	}
	return s.Get(ctx, userID)
}

// ChangePassword replaces the password and signs the user out everywhere by
// revoking their refresh tokens.
func (s *ProfileService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	var v domain.ValidationError
	domain.ValidatePassword(&v, "new_password", in.NewPassword)
	if err := v.Err(); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}
	if err := s.Hasher.Verify(in.CurrentPassword, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrWrongPassword
		}
		return err
	}

	hash, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return notFound(err)
		}
		return tx.RefreshTokens().RevokeAllForUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", userID))
	return nil
}
