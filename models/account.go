package models

import "time"

// Account represents a login account for the web UI.
type Account struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // bcrypt hash, never exposed in API responses
	CreatedAt    time.Time `json:"createdAt"`
}

// AccountStorage is the internal representation used for file persistence.
// Unlike Account, this includes the password hash.
type AccountStorage struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToStorage converts an Account to AccountStorage for persistence.
func (a Account) ToStorage() AccountStorage {
	return AccountStorage{
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	}
}

// FromStorage converts an AccountStorage back to an Account.
func (s AccountStorage) FromStorage() Account {
	return Account{
		Username:     s.Username,
		PasswordHash: s.PasswordHash,
		CreatedAt:    s.CreatedAt,
	}
}
