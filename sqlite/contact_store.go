package sqlite

import (
	"context"
	"database/sql"

	"github.com/prior-it/directory/core"
)

const contactColumns = `id, name, phone, email, address, bookmarked`

func NewContactStore(db *DB) *ContactStore {
	return &ContactStore{db}
}

// SQLite implementation of the core ContactStore interface.
type ContactStore struct {
	db *DB
}

// Force struct to implement the core interface
var (
	_ core.ContactStore = &ContactStore{}
	_ core.Pinger       = &ContactStore{}
)

// CreateContact implements core.ContactStore.
func (s *ContactStore) CreateContact(
	ctx context.Context,
	data core.ContactCreateData,
) (*core.Contact, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return s.queryOne(ctx,
		`INSERT INTO contacts (name, phone, email, address, bookmarked)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+contactColumns,
		data.Name, data.Phone, data.Email, data.Address, data.Bookmarked,
	)
}

// ListContacts implements core.ContactStore.
func (s *ContactStore) ListContacts(ctx context.Context) ([]core.Contact, error) {
	return s.queryList(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY id`)
}

// GetContact implements core.ContactStore.
func (s *ContactStore) GetContact(ctx context.Context, id core.ContactID) (*core.Contact, error) {
	return s.queryOne(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, int64(id))
}

// FindContactsByName implements core.ContactStore.
// SQLite's LIKE only folds ASCII letters, so matching happens in Go.
func (s *ContactStore) FindContactsByName(ctx context.Context, query string) ([]core.Contact, error) {
	all, err := s.ListContacts(ctx)
	if err != nil || query == "" {
		return all, err
	}
	found := make([]core.Contact, 0, len(all))
	for _, contact := range all {
		if core.MatchesName(contact.Name, query) {
			found = append(found, contact)
		}
	}
	return found, nil
}

// FindContactsByBookmark implements core.ContactStore.
func (s *ContactStore) FindContactsByBookmark(
	ctx context.Context,
	bookmarked bool,
) ([]core.Contact, error) {
	if !bookmarked {
		return s.ListContacts(ctx)
	}
	return s.queryList(ctx, `SELECT `+contactColumns+` FROM contacts WHERE bookmarked ORDER BY id`)
}

// SetContactBookmarked implements core.ContactStore.
func (s *ContactStore) SetContactBookmarked(
	ctx context.Context,
	id core.ContactID,
	bookmarked bool,
) (*core.Contact, error) {
	return s.queryOne(ctx,
		`UPDATE contacts SET bookmarked = ? WHERE id = ? RETURNING `+contactColumns,
		bookmarked, int64(id),
	)
}

// UpdateContact implements core.ContactStore.
func (s *ContactStore) UpdateContact(
	ctx context.Context,
	id core.ContactID,
	data core.ContactUpdateData,
) (*core.Contact, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return s.queryOne(ctx,
		`UPDATE contacts SET
			name = COALESCE(?, name),
			phone = COALESCE(?, phone),
			email = COALESCE(?, email),
			address = COALESCE(?, address),
			bookmarked = COALESCE(?, bookmarked)
		WHERE id = ?
		RETURNING `+contactColumns,
		nullString(data.Name),
		nullString(data.Phone),
		nullString(data.Email),
		nullString(data.Address),
		nullBool(data.Bookmarked),
		int64(id),
	)
}

// DeleteContact implements core.ContactStore.
func (s *ContactStore) DeleteContact(ctx context.Context, id core.ContactID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, int64(id))
	if err != nil {
		return convertSqliteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return convertSqliteError(err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Ping implements core.Pinger.
func (s *ContactStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (core.Contact, error) {
	var (
		contact core.Contact
		id      int64
	)
	err := row.Scan(&id, &contact.Name, &contact.Phone, &contact.Email, &contact.Address, &contact.Bookmarked)
	contact.ID = core.ContactID(id)
	return contact, err
}

func (s *ContactStore) queryOne(ctx context.Context, query string, args ...any) (*core.Contact, error) {
	contact, err := scanContact(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, convertSqliteError(err)
	}
	return &contact, nil
}

func (s *ContactStore) queryList(ctx context.Context, query string, args ...any) ([]core.Contact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, convertSqliteError(err)
	}
	defer rows.Close()

	list := []core.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, convertSqliteError(err)
		}
		list = append(list, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, convertSqliteError(err)
	}
	return list, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
