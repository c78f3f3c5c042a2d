package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizbox/internal/models"
	"quizbox/internal/storage"
)

// ErrInvalidCredentials is returned by SignIn when no account exists or
// the email does not match the stored record.
var ErrInvalidCredentials = errors.New("auth: invalid email or password")

const userKey = "user"

const recordVersion = 1

// userEnvelope is the persisted shape of the single user slot.
type userEnvelope struct {
	Version int          `json:"version"`
	User    *models.User `json:"user"`
}

// Store owns the current-user session, backed by a single persisted
// slot. At most one user record exists per deployment; sign-up
// overwrites it.
type Store struct {
	mu        sync.RWMutex
	store     storage.Store
	verifier  Verifier
	user      *models.User
	loading   bool
	listeners []func(*models.User)
}

// New creates the store and kicks off the asynchronous initial load.
// Until that load completes Loading reports true. A nil verifier
// defaults to EmailOnlyVerifier.
func New(st storage.Store, v Verifier) *Store {
	if v == nil {
		v = EmailOnlyVerifier{}
	}
	s := &Store{store: st, verifier: v, loading: true}
	go s.loadInitial()
	return s
}

func (s *Store) loadInitial() {
	user, err := s.readUser(context.Background())
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("Error loading user: %v", err)
	}

	s.mu.Lock()
	s.user = user
	s.loading = false
	listeners := append([]func(*models.User){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
}

func (s *Store) readUser(ctx context.Context) (*models.User, error) {
	raw, err := s.store.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}

	var env userEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err == nil && env.User != nil {
		return env.User, nil
	}
	// Pre-versioning records stored the bare user object.
	var legacy models.User
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		return nil, fmt.Errorf("error decoding user record: %w", err)
	}
	if legacy.Email == "" && legacy.ID == "" {
		return nil, nil
	}
	return &legacy, nil
}

func (s *Store) writeUser(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(userEnvelope{Version: recordVersion, User: user})
	if err != nil {
		return err
	}
	return s.store.Set(ctx, userKey, string(raw))
}

// User returns the current user, or nil when signed out or still loading.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Loading reports whether the initial load is still in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Subscribe registers a listener invoked on every user change.
// Listeners receive nil on sign-out. If the initial load has already
// finished the listener fires once immediately with the current state,
// so late subscribers still observe a restored user.
func (s *Store) Subscribe(fn func(*models.User)) {
	s.mu.Lock()
	loaded := !s.loading
	user := s.user
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()

	if loaded {
		fn(user)
	}
}

func (s *Store) setUser(user *models.User) {
	s.mu.Lock()
	s.user = user
	listeners := append([]func(*models.User){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
}

// SignUp creates a fresh user, overwrites the stored slot and makes it
// current. Email format and password strength are not validated here.
func (s *Store) SignUp(ctx context.Context, email, password, name string) (*models.User, error) {
	user := &models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		Provider: models.ProviderEmail,
	}
	if err := s.writeUser(ctx, user); err != nil {
		log.Printf("Error saving user: %v", err)
		return nil, err
	}
	s.setUser(user)
	return user, nil
}

// SignIn matches the attempt against the single stored record through
// the configured Verifier.
func (s *Store) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	stored, err := s.readUser(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Error loading user: %v", err)
		}
		return nil, ErrInvalidCredentials
	}
	if err := s.verifier.Verify(stored, email, password); err != nil {
		return nil, err
	}
	s.setUser(stored)
	return stored, nil
}

// SignInWithApple fabricates an Apple-provider user. Placeholder for a
// real Sign in with Apple flow; no identity assertion happens.
func (s *Store) SignInWithApple(ctx context.Context) (*models.User, error) {
	return s.signInWithProvider(ctx, models.ProviderApple, "Apple User")
}

// SignInWithGoogle fabricates a Google-provider user. Placeholder for a
// real OAuth flow; no identity assertion happens.
func (s *Store) SignInWithGoogle(ctx context.Context) (*models.User, error) {
	return s.signInWithProvider(ctx, models.ProviderGoogle, "Google User")
}

func (s *Store) signInWithProvider(ctx context.Context, provider models.Provider, name string) (*models.User, error) {
	user := &models.User{
		ID:       uuid.NewString(),
		Email:    fmt.Sprintf("%s_%d@example.com", provider, time.Now().UnixMilli()),
		Name:     name,
		Provider: provider,
	}
	if err := s.writeUser(ctx, user); err != nil {
		log.Printf("Error saving user: %v", err)
		return nil, err
	}
	s.setUser(user)
	return user, nil
}

// SignOut clears the stored slot and the current user.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.store.Delete(ctx, userKey); err != nil {
		log.Printf("Error clearing user: %v", err)
		return err
	}
	s.setUser(nil)
	return nil
}
