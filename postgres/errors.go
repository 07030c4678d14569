package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prior-it/directory/core"
)

// convertPgError will convert known postgres errors to their core variant.
// Unknown or unhandled errors will be returned as-is.
// Converting nil will simply return nil.
func convertPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	var connectErr *pgconn.ConnectError
	switch {
	case errors.As(err, &pgErr):
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return errors.Join(core.ErrConflict, err)
		case pgErr.Code == pgerrcode.CheckViolation, pgErr.Code == pgerrcode.NotNullViolation:
			return errors.Join(core.ErrValidation, err)
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgerrcode.IsInsufficientResources(pgErr.Code),
			pgErr.Code == pgerrcode.AdminShutdown,
			pgErr.Code == pgerrcode.CannotConnectNow:
			return errors.Join(core.ErrStoreUnavailable, err)
		default:
			return err
		}
	case errors.As(err, &connectErr):
		return errors.Join(core.ErrStoreUnavailable, err)
	case errors.Is(err, pgx.ErrNoRows):
		return errors.Join(core.ErrNotFound, err)
	case pgconn.Timeout(err):
		return errors.Join(core.ErrStoreUnavailable, err)
	}
	return err
}
