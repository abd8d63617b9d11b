// Package session persists the client's auth state across full navigations.
// The access token and the one-shot pending-redirect destination are the only
// two slots; both must survive the process being torn down and recreated,
// which is exactly what happens between the two legs of an OAuth round trip.
package session

import (
	"context"
	"errors"
)

// Storage keys. Collaborators outside the auth flow read the token key to
// attach it to authenticated calls.
const (
	KeyAccessToken     = "access_token"
	KeyPendingRedirect = "oauth_redirect_to"
)

// DefaultDestination is where a consumed-but-empty pending redirect lands.
const DefaultDestination = "/"

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("session key not found")

// Store is durable key/value persistence for session state.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session wraps a Store with the typed operations the auth flows need.
type Session struct {
	store Store
}

// New wraps store.
func New(store Store) *Session {
	return &Session{store: store}
}

// Token returns the stored access token, or "" when signed out.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, KeyAccessToken)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return token, err
}

// SetToken stores the complete access token in a single write.
func (s *Session) SetToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, KeyAccessToken, token)
}

// ClearToken signs the session out locally.
func (s *Session) ClearToken(ctx context.Context) error {
	return s.store.Delete(ctx, KeyAccessToken)
}

// StashRedirect records the destination to resume after the OAuth round trip.
// The slot is single-valued: a later stash overwrites an earlier one.
func (s *Session) StashRedirect(ctx context.Context, destination string) error {
	return s.store.Set(ctx, KeyPendingRedirect, destination)
}

// TakeRedirect consumes the pending redirect exactly once: the stored
// destination is returned and the slot cleared. An empty slot yields
// DefaultDestination.
func (s *Session) TakeRedirect(ctx context.Context) (string, error) {
	destination, err := s.store.Get(ctx, KeyPendingRedirect)
	if errors.Is(err, ErrNotFound) {
		return DefaultDestination, nil
	}
	if err != nil {
		return "", err
	}
	if err := s.store.Delete(ctx, KeyPendingRedirect); err != nil {
		return "", err
	}
	if destination == "" {
		return DefaultDestination, nil
	}
	return destination, nil
}
