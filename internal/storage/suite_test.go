package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercises a migrated, empty store.
func runStoreSuite(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, store.Ping(ctx))
	})

	t.Run("MigrateIsIdempotent", func(t *testing.T) {
		require.NoError(t, store.Migrate(ctx))
	})

	t.Run("APIKeys", func(t *testing.T) {
		key, err := store.CreateAPIKey(ctx, "ci")
		require.NoError(t, err)
		assert.Contains(t, key, APIKeyPrefix)

		ak, err := store.ValidateAPIKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "ci", ak.Name)
		assert.Equal(t, hashAPIKey(key), ak.KeyHash)

		_, err = store.ValidateAPIKey(ctx, APIKeyPrefix+"unknown")
		assert.ErrorIs(t, err, ErrNotFound)

		keys, err := store.ListAPIKeys(ctx)
		require.NoError(t, err)
		require.Len(t, keys, 1)
		assert.Equal(t, ak.ID, keys[0].ID)
		assert.NotEmpty(t, keys[0].LastUsedAt)

		require.NoError(t, store.RevokeAPIKey(ctx, ak.ID))
		_, err = store.ValidateAPIKey(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.RevokeAPIKey(ctx, ak.ID), ErrNotFound)
		assert.ErrorIs(t, store.RevokeAPIKey(ctx, "no-such-key"), ErrNotFound)

		keys, err = store.ListAPIKeys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("Checks", func(t *testing.T) {
		base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			method := "52"
			if i%2 == 1 {
				method = "00"
			}
			c := &Check{
				Method:      method,
				Account:     "******1500",
				Valid:       i != 3,
				Outcome:     "valid",
				Alternative: i - 1,
				KeyID:       "key-1",
				RequestID:   "req",
				CreatedAt:   base.Add(time.Duration(i) * time.Second),
			}
			require.NoError(t, store.RecordCheck(ctx, c))
			assert.NotEmpty(t, c.ID)
		}

		res, err := store.ListChecks(ctx, CheckFilter{}, PaginationParams{Limit: 10})
		require.NoError(t, err)
		require.Len(t, res.Data, 5)
		assert.False(t, res.HasMore)
		assert.True(t, res.Data[0].CreatedAt.Equal(base.Add(4*time.Second)), "newest first")
		assert.Equal(t, 3, res.Data[0].Alternative)
		assert.Equal(t, "key-1", res.Data[0].KeyID)
		assert.False(t, res.Data[1].Valid)

		res, err = store.ListChecks(ctx, CheckFilter{Method: "00"}, PaginationParams{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, res.Data, 2)
		for _, c := range res.Data {
			assert.Equal(t, "00", c.Method)
		}

		first, err := store.ListChecks(ctx, CheckFilter{}, PaginationParams{Limit: 3})
		require.NoError(t, err)
		require.Len(t, first.Data, 3)
		assert.True(t, first.HasMore)
		require.NotEmpty(t, first.NextCursor)

		second, err := store.ListChecks(ctx, CheckFilter{}, PaginationParams{Limit: 3, Cursor: first.NextCursor})
		require.NoError(t, err)
		require.Len(t, second.Data, 2)
		assert.False(t, second.HasMore)
		assert.True(t, second.Data[0].CreatedAt.Equal(base.Add(time.Second)))

		_, err = store.ListChecks(ctx, CheckFilter{}, PaginationParams{Limit: 3, Cursor: "garbage"})
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})
}
