package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

type MFAService struct {
	Store  store.Store
	Issuer string // shown by authenticator apps, e.g. "Leadboard"
}

// EnrollTOTP generates and stores a TOTP secret for the user. MFA is not
// enforced until VerifyTOTP confirms a code from it. Enrolling again replaces
// a pending secret.
func (s *MFAService) EnrollTOTP(ctx context.Context, userID string) (domain.MFAEnrollment, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.MFAEnrollment{}, notFound(err)
	}
	if user.MFAEnabled() {
		return domain.MFAEnrollment{}, ErrMFAAlreadyOn
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("generate totp key: %w", err)
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("store mfa secret: %w", err)
	}
	return domain.MFAEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// VerifyTOTP enables MFA once the user proves they hold the enrolled secret.
func (s *MFAService) VerifyTOTP(ctx context.Context, userID, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}
	if user.MFAEnabled() {
		return ErrMFAAlreadyOn
	}
	if user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotEnrolled
	}
	if !totp.Validate(strings.TrimSpace(code), *user.MFASecret) {
		return ErrInvalidOTP
	}
	return s.Store.Users().EnableMFA(ctx, userID, time.Now().UTC())
}

// DisableTOTP turns MFA off. A current code is required.
func (s *MFAService) DisableTOTP(ctx context.Context, userID, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}
	if !user.MFAEnabled() || user.MFASecret == nil {
		return ErrMFANotEnabled
	}
	if !totp.Validate(strings.TrimSpace(code), *user.MFASecret) {
		return ErrInvalidOTP
	}
	return s.Store.Users().DisableMFA(ctx, userID)
}
