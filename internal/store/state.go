package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AccessTokenKey is the client_state key holding the bearer token.
const AccessTokenKey = "access_token"

// GetState returns the value stored under key. ok is false when the key is
// absent.
func (db *DB) GetState(key string) (value string, ok bool, err error) {
	err = db.QueryRow(`SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get state %s: %w", key, err)
	}
	return value, true, nil
}

// SetState stores value under key, replacing any previous value.
func (db *DB) SetState(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set state %s: %w", key, err)
	}
	return nil
}

// DeleteState removes key. Deleting an absent key is not an error.
func (db *DB) DeleteState(key string) error {
	if _, err := db.Exec(`DELETE FROM client_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete state %s: %w", key, err)
	}
	return nil
}

// TokenStore persists the bearer token under AccessTokenKey.
type TokenStore struct {
	db *DB
}

// NewTokenStore returns a token store backed by db.
func NewTokenStore(db *DB) *TokenStore {
	return &TokenStore{db: db}
}

// Load returns the persisted token, or "" when none is stored.
func (s *TokenStore) Load() (string, error) {
	v, _, err := s.db.GetState(AccessTokenKey)
	return v, err
}

// Save persists token.
func (s *TokenStore) Save(token string) error {
	return s.db.SetState(AccessTokenKey, token)
}

// Remove deletes the persisted token.
func (s *TokenStore) Remove() error {
	return s.db.DeleteState(AccessTokenKey)
}
