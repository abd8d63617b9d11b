package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, "codex")
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	_, err := store.Get(ctx, KeyAccessToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyAccessToken, "token-1"))
	value, err := store.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "token-1", value)

	require.NoError(t, store.Delete(ctx, KeyAccessToken))
	_, err = store.Get(ctx, KeyAccessToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_KeysAreNamespaced(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, "codex")
	require.NoError(t, store.Set(ctx, KeyPendingRedirect, "/dashboard"))

	raw, err := mr.Get("codex:session:" + KeyPendingRedirect)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", raw)
}

func TestRedisStore_ExactlyOnceRedirectAcrossSessions(t *testing.T) {
	// Two Session instances over the same Redis backend model the two page
	// loads of an OAuth round trip.
	ctx := context.Background()
	store := newRedisStore(t)

	initiation := New(store)
	require.NoError(t, initiation.StashRedirect(ctx, "/dashboard"))

	callback := New(store)
	dest, err := callback.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", dest)

	dest, err = callback.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultDestination, dest)
}
