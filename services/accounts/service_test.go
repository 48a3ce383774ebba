package accounts

import (
	"errors"
	"testing"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc := newTestService(t)

	account, err := svc.Create("alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if account.Username != "alice" {
		t.Fatalf("expected username alice, got %q", account.Username)
	}

	got, err := svc.Authenticate("alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Create("alice", "s3cret-pass"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Authenticate("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Authenticate("nobody", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Create("", "pass"); !errors.Is(err, ErrUsernameRequired) {
		t.Fatalf("expected ErrUsernameRequired, got %v", err)
	}
	if _, err := svc.Create("alice", ""); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Create("alice", "pass-one"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create("alice", "pass-two"); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestPersistenceAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.Create("alice", "s3cret-pass"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reloaded, err := NewService(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Count() != 1 {
		t.Fatalf("expected 1 account after reload, got %d", reloaded.Count())
	}
	if _, err := reloaded.Authenticate("alice", "s3cret-pass"); err != nil {
		t.Fatalf("Authenticate after reload: %v", err)
	}
}
