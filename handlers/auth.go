package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"moontv/api"
	"moontv/services/accounts"
	"moontv/services/sessions"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	accounts *accounts.Service
	sessions *sessions.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accountsSvc *accounts.Service, sessionsSvc *sessions.Service) *AuthHandler {
	return &AuthHandler{
		accounts: accountsSvc,
		sessions: sessionsSvc,
	}
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	Username  string `json:"username"`
}

// Login authenticates a user and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	account, err := h.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password", "")
		return
	}

	session, err := h.sessions.Create(account.Username, r.Header.Get("User-Agent"), api.ClientIP(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format("2006-01-02T15:04:05Z"),
		Username:  account.Username,
	})
}

// Logout invalidates the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := api.ExtractToken(r)
	if token == "" {
		writeError(w, http.StatusBadRequest, "no session token", "")
		return
	}

	if err := h.sessions.Revoke(token); err != nil && !errors.Is(err, sessions.ErrSessionNotFound) {
		// A session that is already gone counts as logged out.
		writeError(w, http.StatusInternalServerError, "failed to revoke session", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "logged out"})
}

// Me returns the current authenticated username.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := api.ExtractToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "not authenticated", "")
		return
	}

	session, err := h.sessions.Validate(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired session", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"username": session.Username})
}
