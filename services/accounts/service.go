package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"moontv/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service manages persistence of login accounts.
type Service struct {
	mu       sync.RWMutex
	path     string
	accounts map[string]models.Account // keyed by lowercase username
}

// NewService creates an accounts service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create accounts dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "accounts.json"),
		accounts: make(map[string]models.Account),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Create adds a new account with a bcrypt-hashed password.
func (s *Service) Create(username, password string) (models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Account{}, ErrUsernameRequired
	}
	if password == "" {
		return models.Account{}, ErrPasswordRequired
	}

	key := strings.ToLower(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[key]; exists {
		return models.Account{}, ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	s.accounts[key] = account
	if err := s.saveLocked(); err != nil {
		delete(s.accounts, key)
		return models.Account{}, err
	}
	return account, nil
}

// Authenticate checks a username/password pair and returns the account.
func (s *Service) Authenticate(username, password string) (models.Account, error) {
	key := strings.ToLower(strings.TrimSpace(username))

	s.mu.RLock()
	account, ok := s.accounts[key]
	s.mu.RUnlock()

	if !ok {
		// Still run bcrypt so unknown usernames take as long as wrong passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$invalidinvalidinvalidinvalidinvalidinval"), []byte(password))
		return models.Account{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// Count returns the number of stored accounts.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read accounts: %w", err)
	}

	var stored []models.AccountStorage
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("parse accounts: %w", err)
	}

	for _, entry := range stored {
		s.accounts[strings.ToLower(entry.Username)] = entry.FromStorage()
	}
	return nil
}

// saveLocked writes accounts to disk. Caller must hold the write lock.
func (s *Service) saveLocked() error {
	stored := make([]models.AccountStorage, 0, len(s.accounts))
	for _, account := range s.accounts {
		stored = append(stored, account.ToStorage())
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
