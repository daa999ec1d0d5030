package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrMissingToken is returned when a login is attempted with no token.
	ErrMissingToken = errors.New("Missing token")
	// ErrNotLoggedIn is returned by surfaces that need an active session.
	ErrNotLoggedIn = errors.New("Not logged in")
)

// Session holds the operator's bearer token and mirrors it into a
// TokenStore. It satisfies storeapi.TokenSource.
type Session struct {
	mu       sync.RWMutex
	token    string
	loggedIn bool
	store    TokenStore
	logger   *zap.Logger
}

// New creates a logged-out session backed by store.
func New(store TokenStore, logger *zap.Logger) *Session {
	return &Session{store: store, logger: logger}
}

// Resolve picks the token to log in with: the URL token when present,
// otherwise whatever the store holds.
func (s *Session) Resolve(ctx context.Context, urlToken string) string {
	if t := strings.TrimSpace(urlToken); t != "" {
		return t
	}
	stored, err := s.store.Get(ctx)
	if err != nil {
		s.logger.Warn("Failed to read stored token", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(stored)
}

// Token returns the token attached to backend calls.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// LoggedIn reports whether the last login completed its initial load.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// Begin stores token and makes it current, before the initial load runs.
func (s *Session) Begin(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}

	s.mu.Lock()
	s.token = token
	s.loggedIn = false
	s.mu.Unlock()

	if err := s.store.Set(ctx, token); err != nil {
		s.logger.Warn("Failed to persist token", zap.Error(err))
	}
	return nil
}

// Complete marks the session authenticated after a successful load.
func (s *Session) Complete() {
	s.mu.Lock()
	s.loggedIn = true
	s.mu.Unlock()
}

// Clear drops the token from memory and the store.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.loggedIn = false
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("Failed to clear stored token", zap.Error(err))
	}
}
