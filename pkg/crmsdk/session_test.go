package crmsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSessionRefreshesExpiredToken(t *testing.T) {
	var refreshes atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		// Already expired once the 30s buffer is applied.
		writeJSON(w, http.StatusOK, TokenResponse{AccessToken: "a1", RefreshToken: "r1", ExpiresIn: 10})
	})
	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "r1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_grant"})
			return
		}
		refreshes.Add(1)
		writeJSON(w, http.StatusOK, TokenResponse{AccessToken: "a2", RefreshToken: "r2", ExpiresIn: 900})
	})
	mux.HandleFunc("GET /v1/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
			return
		}
		writeJSON(w, http.StatusOK, Profile{ID: "u1", Email: "ana@example.com"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, err := NewClient(srv.URL+"/").Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "x"})
	require.NoError(t, err)

	p, err := s.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", p.ID)
	require.Equal(t, "r2", s.RefreshToken())

	_, err = s.Profile(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, refreshes.Load())
}

func TestSessionDecodesAPIErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/leads", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    "validation_failed",
			"message": "request validation failed",
			"details": map[string]string{"name": "is required"},
		})
	})
	mux.HandleFunc("DELETE /v1/stages/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":             "stage_not_empty",
			"error_description": "cannot remove stages with leads",
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewClient(srv.URL).NewSessionFromTokens("a1", "r1", 900)

	_, err := s.CreateLead(context.Background(), CreateLeadRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, ErrorCodeValidation, apiErr.Code)
	require.Equal(t, "is required", apiErr.Details["name"])

	err = s.DeleteStage(context.Background(), "s1")
	require.True(t, IsCode(err, ErrorCodeStageNotEmpty))
	require.Contains(t, err.Error(), "cannot remove stages with leads")
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	var revoked string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		revoked = req.RefreshToken
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewClient(srv.URL).NewSessionFromTokens("a1", "r1", 900)
	require.NoError(t, s.Logout(context.Background()))
	require.Equal(t, "r1", revoked)
	require.ErrorIs(t, s.Logout(context.Background()), ErrNoRefreshToken)
}
