package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_TokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStore())

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", token, "fresh store has no token")

	require.NoError(t, s.SetToken(ctx, "token-1"))
	token, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	// A later auth overwrites the slot wholesale.
	require.NoError(t, s.SetToken(ctx, "token-2"))
	token, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)

	require.NoError(t, s.ClearToken(ctx))
	token, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", token)
}

func TestSession_TakeRedirectExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStore())

	require.NoError(t, s.StashRedirect(ctx, "/dashboard"))

	dest, err := s.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", dest)

	// Second read finds the slot cleared.
	dest, err = s.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultDestination, dest)
}

func TestSession_TakeRedirectDefault(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStore())

	dest, err := s.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/", dest)
}

func TestSession_StashOverwrites(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStore())

	require.NoError(t, s.StashRedirect(ctx, "/first"))
	require.NoError(t, s.StashRedirect(ctx, "/second"))

	dest, err := s.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/second", dest)
}

func TestMemoryStore_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
