package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"moontv/services/accounts"
	"moontv/services/sessions"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *sessions.Service) {
	t.Helper()

	accountsSvc, err := accounts.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("init accounts: %v", err)
	}
	if _, err := accountsSvc.Create("alice", "s3cret-pass"); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	sessionsSvc, err := sessions.NewService("", sessions.DefaultSessionDuration)
	if err != nil {
		t.Fatalf("init sessions: %v", err)
	}
	return NewAuthHandler(accountsSvc, sessionsSvc), sessionsSvc
}

func doLogin(t *testing.T, handler *AuthHandler, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	handler, sessionsSvc := newAuthHandler(t)

	rec := doLogin(t, handler, "alice", "s3cret-pass")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" || resp.Username != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	session, err := sessionsSvc.Validate(resp.Token)
	if err != nil {
		t.Fatalf("token should resolve to a session: %v", err)
	}
	if session.Username != "alice" {
		t.Fatalf("session bound to wrong user: %q", session.Username)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, _ := newAuthHandler(t)

	rec := doLogin(t, handler, "alice", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = doLogin(t, handler, "nobody", "whatever")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", rec.Code)
	}
}

func TestLoginMalformedBody(t *testing.T) {
	handler, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	handler, sessionsSvc := newAuthHandler(t)

	rec := doLogin(t, handler, "alice", "s3cret-pass")
	var resp LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	out := httptest.NewRecorder()
	handler.Logout(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", out.Code)
	}
	if _, err := sessionsSvc.Validate(resp.Token); err == nil {
		t.Fatal("token should be invalid after logout")
	}

	// Logging out again is still a success.
	out = httptest.NewRecorder()
	handler.Logout(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat logout, got %d", out.Code)
	}
}

func TestMe(t *testing.T) {
	handler, _ := newAuthHandler(t)

	rec := doLogin(t, handler, "alice", "s3cret-pass")
	var resp LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	out := httptest.NewRecorder()
	handler.Me(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", out.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(out.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["username"] != "alice" {
		t.Fatalf("expected alice, got %q", body["username"])
	}

	anon := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	out = httptest.NewRecorder()
	handler.Me(out, anon)
	if out.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", out.Code)
	}
}
