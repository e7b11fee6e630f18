package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pair, err := f.auth.Signup(ctx, SignupInput{Email: " Ana@Example.com ", Password: "password123", FullName: "Ana"})
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := f.auth.Verifier().Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", claims.Email)
	require.True(t, claims.HasAMR(jwtx.AMRPassword))

	p, err := f.profiles.Get(ctx, claims.Subject)
	require.NoError(t, err)
	require.Equal(t, "Ana", p.FullName)
	require.Nil(t, p.CompanyID)

	_, err = f.auth.Login(ctx, LoginInput{Email: "ANA@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, LoginInput{Email: "ana@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidGrant)

	_, err = f.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrInvalidGrant)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, SignupInput{Email: "not-an-email", Password: "short"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "email")
	require.Contains(t, verr.Fields, "password")
	require.Contains(t, verr.Fields, "full_name")

	f.signup(t, "dup@example.com")
	_, err = f.auth.Signup(ctx, SignupInput{Email: "dup@example.com", Password: "password123", FullName: "Dup"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRefreshRotation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.auth.Signup(ctx, SignupInput{Email: "rot@example.com", Password: "password123", FullName: "Rot"})
	require.NoError(t, err)

	second, err := f.auth.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	c1, err := f.auth.Verifier().Verify(first.AccessToken)
	require.NoError(t, err)
	c2, err := f.auth.Verifier().Verify(second.AccessToken)
	require.NoError(t, err)
	require.Equal(t, c1.SID, c2.SID, "rotation keeps the session")

	_, err = f.auth.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidGrant, "old token is revoked")

	require.NoError(t, f.auth.Logout(ctx, second.RefreshToken))
	_, err = f.auth.Refresh(ctx, second.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidGrant)

	require.NoError(t, f.auth.Logout(ctx, "never-issued"))
}

func TestRefreshRejectsExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pair, err := f.auth.Signup(ctx, SignupInput{Email: "old@example.com", Password: "password123", FullName: "Old"})
	require.NoError(t, err)

	f.auth.Now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidGrant)
}

func TestMFALoginFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.signup(t, "mfa@example.com")

	err := f.mfa.VerifyTOTP(ctx, userID, "123456")
	require.ErrorIs(t, err, ErrMFANotEnrolled)

	enr, err := f.mfa.EnrollTOTP(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, enr.Secret)
	require.Contains(t, enr.URL, "otpauth://totp/")

	require.ErrorIs(t, f.mfa.VerifyTOTP(ctx, userID, "abcdef"), ErrInvalidOTP)

	code, err := totp.GenerateCode(enr.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.mfa.VerifyTOTP(ctx, userID, code))

	_, err = f.mfa.EnrollTOTP(ctx, userID)
	require.ErrorIs(t, err, ErrMFAAlreadyOn)

	_, err = f.auth.Login(ctx, LoginInput{Email: "mfa@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrMFARequired)

	_, err = f.auth.Login(ctx, LoginInput{Email: "mfa@example.com", Password: "password123", OTP: "abcdef"})
	require.ErrorIs(t, err, ErrInvalidOTP)

	pair, err := f.auth.Login(ctx, LoginInput{Email: "mfa@example.com", Password: "password123", OTP: code})
	require.NoError(t, err)
	claims, err := f.auth.Verifier().Verify(pair.AccessToken)
	require.NoError(t, err)
	require.True(t, claims.HasAMR(jwtx.AMRMFA))

	require.ErrorIs(t, f.mfa.DisableTOTP(ctx, userID, "abcdef"), ErrInvalidOTP)
	require.NoError(t, f.mfa.DisableTOTP(ctx, userID, code))

	_, err = f.auth.Login(ctx, LoginInput{Email: "mfa@example.com", Password: "password123"})
	require.NoError(t, err)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pair, err := f.auth.Signup(ctx, SignupInput{Email: "pw@example.com", Password: "password123", FullName: "Pw"})
	require.NoError(t, err)
	claims, err := f.auth.Verifier().Verify(pair.AccessToken)
	require.NoError(t, err)

	err = f.profiles.ChangePassword(ctx, claims.Subject, ChangePasswordInput{CurrentPassword: "nope-nope", NewPassword: "newpassword"})
	require.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, f.profiles.ChangePassword(ctx, claims.Subject, ChangePasswordInput{
		CurrentPassword: "password123", NewPassword: "newpassword",
	}))

	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidGrant)

	_, err = f.auth.Login(ctx, LoginInput{Email: "pw@example.com", Password: "newpassword"})
	require.NoError(t, err)
}

func TestProfileUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.signup(t, "prof@example.com")

	name := "Ana Paula"
	avatar := "https://cdn.example.com/a.png"
	p, err := f.profiles.Update(ctx, userID, ProfilePatch{FullName: &name, AvatarURL: &avatar})
	require.NoError(t, err)
	require.Equal(t, name, p.FullName)
	require.Equal(t, avatar, p.AvatarURL)

	bad := "ftp://x"
	_, err = f.profiles.Update(ctx, userID, ProfilePatch{AvatarURL: &bad})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}
