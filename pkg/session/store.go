// Package session holds the in-memory record of who is logged in.
//
// A Store is created per application (or per test) and handed to whatever
// needs it; there is no package-level session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/naveenspark/synex/pkg/domain"
	"github.com/naveenspark/synex/pkg/tokencache"
)

// Session is a point-in-time copy of the store's state.
type Session struct {
	User            *domain.User
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
}

// Tokens returns the session's token pair.
func (s Session) Tokens() domain.TokenPair {
	return domain.TokenPair{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
}

// Store is the current session. All fields change together.
type Store struct {
	cache tokencache.Cache

	mu      sync.RWMutex
	current Session
}

// NewStore returns an empty, unauthenticated store. cache is where Logout
// removes persisted tokens from; it may be nil when nothing is persisted.
func NewStore(cache tokencache.Cache) *Store {
	return &Store{cache: cache}
}

// SetCredentials replaces the session. Tokens are not validated and nothing
// is persisted here. The session counts as authenticated only when a user
// and both tokens are present.
func (s *Store) SetCredentials(user *domain.User, accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{
		User:            user,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		IsAuthenticated: user != nil && accessToken != "" && refreshToken != "",
	}
}

// Logout clears the session and removes the persisted access and refresh
// tokens. The reset token is left alone. The in-memory state is always
// cleared; an error only reports that the cache could not be updated.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = Session{}
	s.mu.Unlock()

	if s.cache == nil {
		return nil
	}
	var errs []error
	for _, key := range []string{tokencache.KeyAccessToken, tokencache.KeyRefreshToken} {
		if err := s.cache.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("session.Logout: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsAuthenticated reports whether a complete session is set.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsAuthenticated
}

// User returns the current user, or nil.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.User
}
