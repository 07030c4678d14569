package postgres_test

import (
	"context"
	"testing"

	"github.com/prior-it/directory/core"
	"github.com/prior-it/directory/postgres"
	"github.com/prior-it/directory/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactStore(t *testing.T) {
	db := tests.DB(t)
	service := postgres.NewContactStore(db)

	tests.ContactStoreSuite(t, func(t *testing.T) core.ContactStore {
		tests.DeleteAllContacts(service)
		return service
	})
}

func TestDatabase(t *testing.T) {
	db := tests.DB(t)
	ctx := context.Background()

	t.Run("ok: ping", func(t *testing.T) {
		assert.NoError(t, postgres.NewContactStore(db).Ping(ctx))
	})

	t.Run("ok: check constraint rejects empty names", func(t *testing.T) {
		_, err := db.Exec(ctx, `INSERT INTO contacts (name, phone) VALUES ('', '123')`)
		assert.Error(t, err)
	})

	t.Run("ok: migrate down and up again", func(t *testing.T) {
		require.NoError(t, db.MigrateDown(ctx))
		require.NoError(t, db.Migrate(ctx))

		store := postgres.NewContactStore(db)
		contact, err := store.CreateContact(ctx, tests.RandomContact())
		require.NoError(t, err)
		assert.NotZero(t, contact.ID)
	})
}
