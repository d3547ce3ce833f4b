package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/storage"
	"github.com/fabienng71/Rclx-sub001/utils"
)

const (
	usersKey        = "auth_users"
	loginJournalKey = "auth_login_journal"

	// MaxLoginJournal is the journal capacity; the oldest entries are evicted first.
	MaxLoginJournal = 1000
)

var validate = validator.New()

// AuthResult is returned by a successful Authenticate.
type AuthResult struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

// TokenSigner issues and verifies session tokens. *utils.TokenIssuer implements it.
type TokenSigner interface {
	Issue(userID string) (string, time.Time, error)
	Verify(token string) (*utils.SessionClaims, error)
}

// CredentialStore owns user records and the login journal.
type CredentialStore struct {
	mu         sync.Mutex
	store      storage.Storage
	tokens     TokenSigner
	clock      utils.Clock
	bcryptCost int
	seeds      []SeedAccount
}

// NewCredentialStore builds a store seeded from the embedded accounts file.
func NewCredentialStore(store storage.Storage, tokens TokenSigner, clock utils.Clock, bcryptCost int) (*CredentialStore, error) {
	seeds, err := DefaultSeedAccounts()
	if err != nil {
		return nil, err
	}
	return NewCredentialStoreWithSeeds(store, tokens, clock, bcryptCost, seeds), nil
}

func NewCredentialStoreWithSeeds(store storage.Storage, tokens TokenSigner, clock utils.Clock, bcryptCost int, seeds []SeedAccount) *CredentialStore {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &CredentialStore{
		store:      store,
		tokens:     tokens,
		clock:      clock,
		bcryptCost: bcryptCost,
		seeds:      seeds,
	}
}

// Authenticate checks email and password. Every call, successful or not, adds a journal entry.
func (s *CredentialStore) Authenticate(ctx context.Context, email, password string, origin models.LoginOrigin) (AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return AuthResult{}, err
	}

	idx := indexByEmail(users, email, "")
	var authErr error
	switch {
	case idx < 0:
		authErr = ErrNotFound
	case !utils.ValidatePassword(users[idx].Password, password):
		authErr = ErrInvalidCredential
	}

	var result AuthResult
	if authErr == nil {
		token, expiresAt, err := s.tokens.Issue(users[idx].ID)
		if err != nil {
			authErr = fmt.Errorf("failed to issue token: %w", err)
		} else {
			result = AuthResult{User: users[idx].Redacted(), Token: token, ExpiresAt: expiresAt}
		}
	}

	// Recorded before any error return, token failures included.
	if err := s.recordAttempt(ctx, email, authErr == nil, origin); err != nil {
		return AuthResult{}, err
	}
	if authErr != nil {
		return AuthResult{}, authErr
	}
	return result, nil
}

// VerifyToken returns the user id carried by a valid, unexpired token.
func (s *CredentialStore) VerifyToken(token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return claims.UserID, nil
}

func (s *CredentialStore) CreateUser(ctx context.Context, input models.CreateUserInput) (models.User, error) {
	if input.Role == "" {
		input.Role = models.RoleUser
	}
	if err := validateStruct(input); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	// Exact, case-sensitive match.
	if indexByEmail(users, input.Email, "") >= 0 {
		return models.User{}, ErrDuplicateEmail
	}

	hash, err := utils.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.clock.Now()
	user := models.User{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  hash,
		Telephone: input.Telephone,
		Role:      input.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.saveUsers(ctx, append(users, user)); err != nil {
		return models.User{}, err
	}
	return user.Redacted(), nil
}

func (s *CredentialStore) UpdateUser(ctx context.Context, id string, patch models.UpdateUserInput) (models.User, error) {
	if err := validateStruct(patch); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	idx := indexByID(users, id)
	if idx < 0 {
		return models.User{}, ErrNotFound
	}

	next := make([]models.User, len(users))
	copy(next, users)
	user := next[idx]

	if patch.Email != nil && *patch.Email != user.Email {
		if indexByEmail(users, *patch.Email, id) >= 0 {
			return models.User{}, ErrDuplicateEmail
		}
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		hash, err := utils.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hash
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Telephone != nil {
		user.Telephone = *patch.Telephone
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	user.UpdatedAt = s.clock.Now()
	next[idx] = user

	if err := s.saveUsers(ctx, next); err != nil {
		return models.User{}, err
	}
	return user.Redacted(), nil
}

// DeleteUser removes the account permanently. Saved quotations keep their sender snapshot.
func (s *CredentialStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	idx := indexByID(users, id)
	if idx < 0 {
		return ErrNotFound
	}
	next := make([]models.User, 0, len(users)-1)
	next = append(next, users[:idx]...)
	next = append(next, users[idx+1:]...)
	return s.saveUsers(ctx, next)
}

func (s *CredentialStore) GetUser(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	idx := indexByID(users, id)
	if idx < 0 {
		return models.User{}, ErrNotFound
	}
	return users[idx].Redacted(), nil
}

func (s *CredentialStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = u.Redacted()
	}
	return out, nil
}

// ListLoginJournal returns the journal newest first.
func (s *CredentialStore) ListLoginJournal(ctx context.Context) ([]models.LoginAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadJournal(ctx)
}

// loadUsers reads auth_users, seeding the default accounts when the key has never been written.
func (s *CredentialStore) loadUsers(ctx context.Context) ([]models.User, error) {
	raw, err := s.store.Get(ctx, usersKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return s.seed(ctx)
	}
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", usersKey, err)
	}
	return users, nil
}

func (s *CredentialStore) seed(ctx context.Context) ([]models.User, error) {
	now := s.clock.Now()
	users := make([]models.User, 0, len(s.seeds))
	for _, a := range s.seeds {
		hash, err := utils.HashPassword(a.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash seed password for %s: %w", a.Email, err)
		}
		users = append(users, models.User{
			ID:        uuid.NewString(),
			Name:      a.Name,
			Email:     a.Email,
			Password:  hash,
			Telephone: a.Telephone,
			Role:      a.Role,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err := s.saveUsers(ctx, users); err != nil {
		return nil, err
	}
	log.Printf("credentials: seeded %d default accounts", len(users))
	return users, nil
}

func (s *CredentialStore) saveUsers(ctx context.Context, users []models.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	return s.store.Set(ctx, usersKey, raw)
}

func (s *CredentialStore) loadJournal(ctx context.Context) ([]models.LoginAttempt, error) {
	raw, err := s.store.Get(ctx, loginJournalKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []models.LoginAttempt{}, nil
	}
	if err != nil {
		return nil, err
	}
	var journal []models.LoginAttempt
	if err := json.Unmarshal(raw, &journal); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", loginJournalKey, err)
	}
	return journal, nil
}

func (s *CredentialStore) recordAttempt(ctx context.Context, email string, success bool, origin models.LoginOrigin) error {
	journal, err := s.loadJournal(ctx)
	if err != nil {
		return err
	}
	attempt := models.LoginAttempt{
		ID:        uuid.NewString(),
		Email:     email,
		Timestamp: s.clock.Now(),
		Success:   success,
		IPAddress: origin.IPAddress,
		UserAgent: origin.UserAgent,
	}
	journal = appendCapped(journal, attempt, MaxLoginJournal)
	raw, err := json.Marshal(journal)
	if err != nil {
		return fmt.Errorf("failed to encode login journal: %w", err)
	}
	if err := s.store.Set(ctx, loginJournalKey, raw); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// appendCapped prepends entry and drops the oldest entries beyond limit.
func appendCapped(journal []models.LoginAttempt, entry models.LoginAttempt, limit int) []models.LoginAttempt {
	n := len(journal) + 1
	if n > limit {
		n = limit
	}
	out := make([]models.LoginAttempt, 0, n)
	out = append(out, entry)
	for _, a := range journal {
		if len(out) == n {
			break
		}
		out = append(out, a)
	}
	return out
}

func indexByEmail(users []models.User, email, exceptID string) int {
	for i, u := range users {
		if u.Email == email && u.ID != exceptID {
			return i
		}
	}
	return -1
}

func indexByID(users []models.User, id string) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var validationErr validator.ValidationErrors
		if errors.As(err, &validationErr) {
			first := validationErr[0]
			switch first.Field() {
			case "Email":
				return fmt.Errorf("%w: invalid email format", ErrValidation)
			case "Password":
				return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
			case "Name":
				return fmt.Errorf("%w: name must be 2-120 characters", ErrValidation)
			case "Role":
				return fmt.Errorf("%w: role must be admin or user", ErrValidation)
			}
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
