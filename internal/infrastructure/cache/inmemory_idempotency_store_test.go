package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark succeeds, second is rejected", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		marked, err := store.MarkProcessed(ctx, "receive:abc:1", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)

		marked, err = store.MarkProcessed(ctx, "receive:abc:1", time.Minute)
		require.NoError(t, err)
		assert.False(t, marked)
	})

	t.Run("IsProcessed reflects marks", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		processed, err := store.IsProcessed(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, processed)

		_, err = store.MarkProcessed(ctx, "present", time.Minute)
		require.NoError(t, err)

		processed, err = store.IsProcessed(ctx, "present")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired key can be marked again", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "short", time.Nanosecond)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "short")
		require.NoError(t, err)
		assert.False(t, processed)

		marked, err := store.MarkProcessed(ctx, "short", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())
	})
}
