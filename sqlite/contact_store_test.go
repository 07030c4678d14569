package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prior-it/directory/core"
	"github.com/prior-it/directory/sqlite"
	"github.com/prior-it/directory/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T, path string) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestContactStore(t *testing.T) {
	tests.ContactStoreSuite(t, func(t *testing.T) core.ContactStore {
		return sqlite.NewContactStore(openDB(t, filepath.Join(t.TempDir(), "contacts.db")))
	})
}

func TestDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("ok: contacts survive reopening the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "contacts.db")
		db, err := sqlite.NewDB(path)
		require.NoError(t, err)
		require.NoError(t, db.Migrate(ctx))
		assert.Equal(t, path, db.Path())

		created, err := sqlite.NewContactStore(db).CreateContact(ctx, tests.RandomContact())
		require.NoError(t, err)
		require.NoError(t, db.Close())

		store := sqlite.NewContactStore(openDB(t, path))
		contact, err := store.GetContact(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, *created, *contact)
	})

	t.Run("ok: deleted ids are not reused after reopening", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "contacts.db")
		store := sqlite.NewContactStore(openDB(t, path))
		created, err := store.CreateContact(ctx, tests.RandomContact())
		require.NoError(t, err)
		require.NoError(t, store.DeleteContact(ctx, created.ID))

		store = sqlite.NewContactStore(openDB(t, path))
		next, err := store.CreateContact(ctx, tests.RandomContact())
		require.NoError(t, err)
		assert.Greater(t, next.ID, created.ID)
	})

	t.Run("ok: ping and migrate down", func(t *testing.T) {
		db := openDB(t, filepath.Join(t.TempDir(), "contacts.db"))
		assert.NoError(t, sqlite.NewContactStore(db).Ping(ctx))
		require.NoError(t, db.MigrateDown(ctx))

		_, err := sqlite.NewContactStore(db).ListContacts(ctx)
		assert.Error(t, err, "The contacts table should be gone")
	})

	t.Run("ok: unicode names are matched without case", func(t *testing.T) {
		store := sqlite.NewContactStore(openDB(t, filepath.Join(t.TempDir(), "contacts.db")))
		created, err := store.CreateContact(ctx, core.ContactCreateData{Name: "Élodie Ünal", Phone: "1"})
		require.NoError(t, err)

		contacts, err := store.FindContactsByName(ctx, "éLODIE")
		require.NoError(t, err)
		if assert.Len(t, contacts, 1) {
			assert.Equal(t, created.ID, contacts[0].ID)
		}
	})
}
