package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/cryptox"
	"github.com/aussiebroadwan/leadboard/pkg/idx"
	"github.com/aussiebroadwan/leadboard/pkg/jwtx"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"
	"github.com/pquerna/otp/totp"
)

type AuthService struct {
	Store      store.Store
	Hasher     *cryptox.Hasher
	KeyManager *jwtx.KeyManager
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

type SignupInput struct {
	Email    string `json:"email" example:"ana@example.com"`
	Password string `json:"password" example:"correct horse"`
	FullName string `json:"full_name" example:"Ana Souza"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// Verifier returns a verifier for the access tokens this service issues.
func (s *AuthService) Verifier() *jwtx.EdDSAVerifier {
	return jwtx.NewEdDSAVerifier(s.KeyManager.KeySet(), s.Issuer, nil)
}

// Signup creates the user and their profile and signs them in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.TokenPair, error) {
	email := domain.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)

	var v domain.ValidationError
	domain.ValidateEmail(&v, email)
	domain.ValidatePassword(&v, "password", in.Password)
	if fullName == "" {
		v.Add("full_name", "is required")
	}
	if err := v.Err(); err != nil {
		return domain.TokenPair{}, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.TokenPair{}, err
	}

	now := s.now()
	user := domain.User{
		ID:           idx.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		if err := tx.Profiles().CreateProfile(ctx, domain.Profile{
			ID:        user.ID,
			FullName:  fullName,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}

		pair, err = s.issue(ctx, tx, user, idx.NewString(), []string{jwtx.AMRPassword}, now)
		return err
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	slogx.FromContext(ctx).Info("user signed up", slog.String("user_id", user.ID))
	return pair, nil
}

// Login checks the password and, when MFA is enabled, the TOTP code.
// ErrMFARequired asks the client to retry with a code.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return domain.TokenPair{}, ErrInvalidGrant
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidGrant
		}
		return domain.TokenPair{}, err
	}

	if err := s.Hasher.Verify(in.Password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login failed", slog.String("user_id", user.ID))
			return domain.TokenPair{}, ErrInvalidGrant
		}
		return domain.TokenPair{}, err
	}

	amr := []string{jwtx.AMRPassword}
	if user.MFAEnabled() {
		code := strings.TrimSpace(in.OTP)
		if code == "" {
			return domain.TokenPair{}, ErrMFARequired
		}
		if user.MFASecret == nil || !totp.Validate(code, *user.MFASecret) {
			l.Info("login otp rejected", slog.String("user_id", user.ID))
			return domain.TokenPair{}, ErrInvalidOTP
		}
		amr = append(amr, jwtx.AMROTP, jwtx.AMRMFA)
	}

	var pair domain.TokenPair
	now := s.now()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		pair, err = s.issue(ctx, tx, user, idx.NewString(), amr, now)
		return err
	})
	return pair, err
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued for the same session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return domain.TokenPair{}, ErrInvalidGrant
	}
	fp := cryptox.FingerprintToken(refreshToken)
	now := s.now()

	var pair domain.TokenPair
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return err
		}
		if rt.Revoked || !now.Before(rt.ExpiresAt) {
			return ErrInvalidGrant
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return err
		}

		user, err := tx.Users().GetUserByID(ctx, rt.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return err
		}

		pair, err = s.issue(ctx, tx, user, rt.SessionID, strings.Fields(rt.AMR), now)
		return err
	})
	return pair, err
}

// Logout revokes a refresh token. Unknown or already revoked tokens are not
// an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshToken))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// issue signs an access token and stores a new refresh token through st.
func (s *AuthService) issue(
	ctx context.Context,
	st store.Store,
	user domain.User,
	sessionID string,
	amr []string,
	now time.Time,
) (domain.TokenPair, error) {
	if len(amr) == 0 {
		amr = []string{jwtx.AMRPassword}
	}

	claims := jwtx.NewAccessClaims(jwtx.AccessParams{
		Subject: user.ID,
		Session: sessionID,
		Email:   user.Email,
		AMR:     amr,
		Issuer:  s.Issuer,
		TTL:     s.accessTTL(),
		Now:     now,
	})
	access, err := s.KeyManager.GetSigner().Sign(claims)
	if err != nil {
		return domain.TokenPair{}, err
	}

	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.NewString(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(opaque),
		SessionID: sessionID,
		AMR:       strings.Join(amr, " "),
		ExpiresAt: now.Add(s.refreshTTL()),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: opaque,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.accessTTL().Seconds()),
	}, nil
}
