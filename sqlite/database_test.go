package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/prior-it/directory/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertSqliteError(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(filepath.Join(t.TempDir(), "contacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	t.Run("ok: nil stays nil", func(t *testing.T) {
		assert.NoError(t, convertSqliteError(nil))
	})

	t.Run("err: check constraint is a validation error", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `INSERT INTO contacts (name, phone) VALUES ('', '123')`)
		require.Error(t, err)
		assert.ErrorIs(t, convertSqliteError(err), core.ErrValidation)
	})

	t.Run("err: not null constraint is a validation error", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `INSERT INTO contacts (name) VALUES ('Li Wei')`)
		require.Error(t, err)
		assert.ErrorIs(t, convertSqliteError(err), core.ErrValidation)
	})

	t.Run("err: duplicate id is a conflict", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `INSERT INTO contacts (id, name, phone) VALUES (7, 'Li Wei', '123')`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `INSERT INTO contacts (id, name, phone) VALUES (7, 'Wang Fang', '456')`)
		require.Error(t, err)
		converted := convertSqliteError(err)
		assert.ErrorIs(t, converted, core.ErrConflict)
		assert.NotErrorIs(t, converted, core.ErrValidation)
	})

	t.Run("err: missing rows are not found", func(t *testing.T) {
		err := db.QueryRowContext(ctx, `SELECT id FROM contacts WHERE id = 999`).Scan(new(int64))
		assert.ErrorIs(t, convertSqliteError(err), core.ErrNotFound)
	})

	t.Run("err: closed connections are unavailable", func(t *testing.T) {
		assert.ErrorIs(t, convertSqliteError(sql.ErrConnDone), core.ErrStoreUnavailable)
	})

	t.Run("ok: unknown errors are returned as-is", func(t *testing.T) {
		assert.Equal(t, sql.ErrTxDone, convertSqliteError(sql.ErrTxDone))
	})
}
