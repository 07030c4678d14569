package cache_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prior-it/directory/cache"
	"github.com/prior-it/directory/core"
	"github.com/prior-it/directory/memory"
	"github.com/prior-it/directory/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("To test the redis cache, set the REDIS_URL env variable to a valid redis server")
	}
	client, err := cache.Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	require.NoError(t, client.FlushDB(context.Background()).Err())
	return client
}

func TestContactStore(t *testing.T) {
	client := redisClient(t)
	tests.ContactStoreSuite(t, func(t *testing.T) core.ContactStore {
		require.NoError(t, client.FlushDB(context.Background()).Err())
		return cache.NewContactStore(&memory.ContactStore{}, client, time.Minute)
	})
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	client := redisClient(t)

	t.Run("ok: get is served from the cache", func(t *testing.T) {
		backing := &memory.ContactStore{}
		store := cache.NewContactStore(backing, client, time.Minute)
		created, err := store.CreateContact(ctx, tests.RandomContact())
		require.NoError(t, err)

		// Change the backing store behind the cache's back.
		_, err = backing.UpdateContact(ctx, created.ID, core.ContactUpdateData{Name: tests.Ptr("Changed")})
		require.NoError(t, err)

		contact, err := store.GetContact(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, contact.Name)
	})

	t.Run("ok: updates refresh the cached entry", func(t *testing.T) {
		store := cache.NewContactStore(&memory.ContactStore{}, client, time.Minute)
		created, err := store.CreateContact(ctx, tests.RandomContact())
		require.NoError(t, err)

		_, err = store.SetContactBookmarked(ctx, created.ID, true)
		require.NoError(t, err)
		contact, err := store.GetContact(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, contact.Bookmarked)
	})

	t.Run("err: deleted contacts are evicted", func(t *testing.T) {
		store := cache.NewContactStore(&memory.ContactStore{}, client, time.Minute)
		created, err := store.CreateContact(ctx, tests.RandomContact())
		require.NoError(t, err)
		require.NoError(t, store.DeleteContact(ctx, created.ID))

		_, err = store.GetContact(ctx, created.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("err: concurrent delete and get leave no stale entry", func(t *testing.T) {
		backing := &memory.ContactStore{}
		store := cache.NewContactStore(backing, client, time.Minute)
		for range 50 {
			created, err := backing.CreateContact(ctx, tests.RandomContact())
			require.NoError(t, err)

			var g errgroup.Group
			g.Go(func() error {
				return store.DeleteContact(ctx, created.ID)
			})
			g.Go(func() error {
				_, err := store.GetContact(ctx, created.ID)
				if errors.Is(err, core.ErrNotFound) {
					return nil
				}
				return err
			})
			require.NoError(t, g.Wait())

			_, err = store.GetContact(ctx, created.ID)
			require.ErrorIs(t, err, core.ErrNotFound, "A deleted contact must not be served from the cache")
		}
	})

	t.Run("ok: ping delegates to the backing store", func(t *testing.T) {
		store := cache.NewContactStore(&memory.ContactStore{}, client, time.Minute)
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestConnect(t *testing.T) {
	t.Run("err: invalid url", func(t *testing.T) {
		_, err := cache.Connect(context.Background(), "not a url")
		assert.Error(t, err)
	})

	t.Run("err: unreachable server", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err := cache.Connect(ctx, "redis://127.0.0.1:1/0")
		assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	})
}
