package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/admission-gate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMemoryStore(t *testing.T) {
	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	t.Run("records and counts requests", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		require.NoError(t, s.Record(context.Background(), "clientA", base))
		require.NoError(t, s.Record(context.Background(), "clientA", base.Add(time.Second)))
		require.NoError(t, s.Record(context.Background(), "clientA", base.Add(2*time.Second)))

		count, err := s.CountSince(context.Background(), "clientA", base)

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("count excludes records before since", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_ = s.Record(context.Background(), "clientA", base)
		_ = s.Record(context.Background(), "clientA", base.Add(time.Minute))

		count, err := s.CountSince(context.Background(), "clientA", base.Add(30*time.Second))

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_ = s.Record(context.Background(), "clientA", base)
		_ = s.Record(context.Background(), "clientA", base)

		count, err := s.CountSince(context.Background(), "clientB", base.Add(-time.Hour))

		require.NoError(t, err)
		assert.Equal(t, int64(0), count, "clientB should have no records")
	})

	t.Run("returns oldest surviving record", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_ = s.Record(context.Background(), "clientA", base.Add(2*time.Second))
		_ = s.Record(context.Background(), "clientA", base)
		_ = s.Record(context.Background(), "clientA", base.Add(time.Second))

		oldest, found, err := s.OldestSince(context.Background(), "clientA", base.Add(-time.Hour))

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, base, oldest)

		// Records before since are ignored.
		oldest, found, err = s.OldestSince(context.Background(), "clientA", base.Add(500*time.Millisecond))

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, base.Add(time.Second), oldest)
	})

	t.Run("oldest reports not found for unknown client", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, found, err := s.OldestSince(context.Background(), "ghost", base)

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("deletes records older than threshold across clients", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_ = s.Record(context.Background(), "clientA", base)
		_ = s.Record(context.Background(), "clientA", base.Add(time.Minute))
		_ = s.Record(context.Background(), "clientB", base)

		removed, err := s.DeleteOlderThan(context.Background(), base.Add(30*time.Second))

		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)

		count, _ := s.CountSince(context.Background(), "clientA", base.Add(-time.Hour))
		assert.Equal(t, int64(1), count)

		count, _ = s.CountSince(context.Background(), "clientB", base.Add(-time.Hour))
		assert.Equal(t, int64(0), count)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_ = s.Record(context.Background(), "clientA", base)

		removed, err := s.DeleteOlderThan(context.Background(), base.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		removed, err = s.DeleteOlderThan(context.Background(), base.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(0), removed)
	})
}
