package crmsdk

import (
	"context"
	"net/http"
)

// Profile returns the caller's profile.
func (s *Session) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := s.getJSON(ctx, "/v1/profile", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile changes the fields set in req.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Profile, error) {
	var p Profile
	if err := s.sendJSON(ctx, http.MethodPatch, "/v1/profile", req, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// ChangePassword sets a new password. The server revokes every refresh token
// of the user, including this session's, so the session stops refreshing.
func (s *Session) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return s.sendJSON(ctx, http.MethodPost, "/v1/profile/password", req, nil, http.StatusNoContent)
}

// SwitchCompany makes companyID the active company for tenant-scoped calls.
func (s *Session) SwitchCompany(ctx context.Context, companyID string) (*Profile, error) {
	var p Profile
	err := s.sendJSON(ctx, http.MethodPost, "/v1/profile/company", SwitchCompanyRequest{CompanyID: companyID}, &p, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EnrollTOTP starts TOTP enrollment. MFA is enabled once VerifyTOTP succeeds.
func (s *Session) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	var enroll TOTPEnrollResponse
	if err := s.sendJSON(ctx, http.MethodPost, "/v1/mfa/totp/enroll", nil, &enroll, http.StatusOK); err != nil {
		return nil, err
	}
	return &enroll, nil
}

// VerifyTOTP confirms enrollment with a current code.
func (s *Session) VerifyTOTP(ctx context.Context, code string) error {
	return s.sendJSON(ctx, http.MethodPost, "/v1/mfa/totp/verify", CodeRequest{Code: code}, nil, http.StatusNoContent)
}

// DisableTOTP turns MFA off. A current code is required.
func (s *Session) DisableTOTP(ctx context.Context, code string) error {
	return s.sendJSON(ctx, http.MethodDelete, "/v1/mfa/totp", CodeRequest{Code: code}, nil, http.StatusNoContent)
}
