package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/storage"
)

const sessionKey = "auth-storage"

// Authenticator is the part of CredentialStore the session needs.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string, origin models.LoginOrigin) (AuthResult, error)
	VerifyToken(token string) (string, error)
}

// SessionSnapshot is exactly what gets persisted for session restore.
type SessionSnapshot struct {
	User            *models.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// SessionStore holds the signed-in identity of a single client.
type SessionStore struct {
	mu    sync.RWMutex
	store storage.Storage
	auth  Authenticator
	state SessionSnapshot
}

// NewSessionStore restores any persisted snapshot.
func NewSessionStore(ctx context.Context, store storage.Storage, auth Authenticator) (*SessionStore, error) {
	s := &SessionStore{store: store, auth: auth}
	raw, err := store.Get(ctx, sessionKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.state); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", sessionKey, err)
	}
	return s, nil
}

// Login authenticates and, on success only, replaces the stored session.
func (s *SessionStore) Login(ctx context.Context, email, password string, origin models.LoginOrigin) (models.User, error) {
	res, err := s.auth.Authenticate(ctx, email, password, origin)
	if err != nil {
		return models.User{}, err
	}
	user := res.User.Redacted()
	next := SessionSnapshot{User: &user, Token: res.Token, IsAuthenticated: true}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(ctx, next); err != nil {
		return models.User{}, err
	}
	s.state = next
	return user, nil
}

// Logout clears the local session; there is nothing to revoke remotely.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionSnapshot{}
	return s.persist(ctx, s.state)
}

func (s *SessionStore) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return models.User{}, false
	}
	return *s.state.User, true
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// IsAuthenticated also treats an expired or tampered token as signed out.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.IsAuthenticated || s.state.User == nil {
		return false
	}
	userID, err := s.auth.VerifyToken(s.state.Token)
	return err == nil && userID == s.state.User.ID
}

func (s *SessionStore) IsAdmin() bool {
	u, ok := s.CurrentUser()
	return ok && s.IsAuthenticated() && u.IsAdmin()
}

func (s *SessionStore) persist(ctx context.Context, snap SessionSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.store.Set(ctx, sessionKey, raw)
}
