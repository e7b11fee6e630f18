package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadboard/internal/crm/service"
	"github.com/aussiebroadwan/leadboard/pkg/crmsdk"
	"github.com/aussiebroadwan/leadboard/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleSignup handles POST /v1/auth/signup
//
//	@Summary		Sign up
//	@Description	Creates an account and its profile and returns a token pair. Passwords need at least 8 characters.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.SignupInput			true	"Account details"
//	@Success		201		{object}	domain.TokenPair			"Token pair"
//	@Failure		400		{object}	httpx.ValidationResponse	"Invalid fields"
//	@Failure		409		{object}	httpx.ErrorResponse			"Email already registered"
//	@Failure		429		{object}	httpx.ErrorResponse			"Rate limited"
//	@Router			/v1/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if !decode(w, r, &req) {
		return
	}

	pair, err := h.AuthService.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, pair)
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Exchanges email and password for a token pair. When MFA is enabled and no otp is sent the response is 409 mfa_required.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.LoginInput	true	"Credentials"
//	@Success		200		{object}	domain.TokenPair	"Token pair"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid credentials or TOTP code"
//	@Failure		409		{object}	httpx.ErrorResponse	"TOTP code required"
//	@Failure		429		{object}	httpx.ErrorResponse	"Rate limited"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if !decode(w, r, &req) {
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleRefresh handles POST /v1/auth/refresh
//
//	@Summary		Refresh tokens
//	@Description	Rotates the refresh token: the presented token is revoked and a new pair is returned.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		crmsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	domain.TokenPair		"Token pair"
//	@Failure		401		{object}	httpx.ErrorResponse		"Invalid, expired or revoked token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleLogout handles POST /v1/auth/logout
//
//	@Summary		Log out
//	@Description	Revokes a refresh token. Unknown tokens are accepted.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	crmsdk.RefreshRequest	true	"Refresh token"
//	@Success		204
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req crmsdk.RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.AuthService.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
