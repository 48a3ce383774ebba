package sessions

import (
	"errors"
	"testing"
	"time"
)

func TestCreateAndValidate(t *testing.T) {
	svc, err := NewService(t.TempDir(), DefaultSessionDuration)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	session, err := svc.Create("alice", "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a non-empty token")
	}
	if session.Username != "alice" {
		t.Fatalf("expected username alice, got %q", session.Username)
	}

	got, err := svc.Validate(session.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.Username != "alice" || got.UserAgent != "test-agent" || got.IPAddress != "127.0.0.1" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	svc, err := NewService("", DefaultSessionDuration)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.Validate("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Validate(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestValidateExpired(t *testing.T) {
	svc, err := NewService("", time.Millisecond)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	session, err := svc.Create("bob", "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := svc.Validate(session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if svc.Count() != 0 {
		t.Fatalf("expired session should be removed, count=%d", svc.Count())
	}
}

func TestRevoke(t *testing.T) {
	svc, err := NewService("", DefaultSessionDuration)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	session, err := svc.Create("alice", "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Revoke(session.Token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Validate(session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after revoke, got %v", err)
	}
	if err := svc.Revoke(session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for double revoke, got %v", err)
	}
}

func TestCleanup(t *testing.T) {
	svc, err := NewService("", time.Millisecond)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Create("alice", "", ""); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	time.Sleep(5 * time.Millisecond)

	if removed := svc.Cleanup(); removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	if svc.Count() != 0 {
		t.Fatalf("expected empty store, count=%d", svc.Count())
	}
}

func TestPersistenceAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir, DefaultSessionDuration)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	session, err := svc.Create("alice", "agent", "10.0.0.1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reloaded, err := NewService(dir, DefaultSessionDuration)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.Validate(session.Token)
	if err != nil {
		t.Fatalf("Validate after reload: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("expected alice, got %q", got.Username)
	}
}
