package postgres

import (
	"context"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/prior-it/directory/core"
)

const contactColumns = `id, name, phone, email, address, bookmarked`

func NewContactStore(DB *DB) *ContactStore {
	return &ContactStore{DB}
}

// Postgres implementation of the core ContactStore interface.
type ContactStore struct {
	db *DB
}

// Force struct to implement the core interface
var (
	_ core.ContactStore = &ContactStore{}
	_ core.Pinger       = &ContactStore{}
)

type contactRow struct {
	ID         int32  `db:"id"`
	Name       string `db:"name"`
	Phone      string `db:"phone"`
	Email      string `db:"email"`
	Address    string `db:"address"`
	Bookmarked bool   `db:"bookmarked"`
}

// CreateContact implements core.ContactStore.CreateContact
func (s *ContactStore) CreateContact(
	ctx context.Context,
	data core.ContactCreateData,
) (*core.Contact, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return s.queryOne(ctx,
		`INSERT INTO contacts (name, phone, email, address, bookmarked)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contactColumns,
		data.Name, data.Phone, data.Email, data.Address, data.Bookmarked,
	)
}

// ListContacts implements core.ContactStore.ListContacts
func (s *ContactStore) ListContacts(ctx context.Context) ([]core.Contact, error) {
	return s.queryList(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY id`)
}

// GetContact implements core.ContactStore.GetContact
func (s *ContactStore) GetContact(ctx context.Context, id core.ContactID) (*core.Contact, error) {
	key, err := bindID(id)
	if err != nil {
		return nil, err
	}
	return s.queryOne(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, key)
}

// FindContactsByName implements core.ContactStore.FindContactsByName
func (s *ContactStore) FindContactsByName(ctx context.Context, query string) ([]core.Contact, error) {
	if query == "" {
		return s.ListContacts(ctx)
	}
	return s.queryList(ctx,
		`SELECT `+contactColumns+` FROM contacts
		WHERE name ILIKE '%' || $1::text || '%'
		ORDER BY id`,
		escapeLike(query),
	)
}

// FindContactsByBookmark implements core.ContactStore.FindContactsByBookmark
func (s *ContactStore) FindContactsByBookmark(
	ctx context.Context,
	bookmarked bool,
) ([]core.Contact, error) {
	if !bookmarked {
		return s.ListContacts(ctx)
	}
	return s.queryList(ctx, `SELECT `+contactColumns+` FROM contacts WHERE bookmarked ORDER BY id`)
}

// SetContactBookmarked implements core.ContactStore.SetContactBookmarked
func (s *ContactStore) SetContactBookmarked(
	ctx context.Context,
	id core.ContactID,
	bookmarked bool,
) (*core.Contact, error) {
	key, err := bindID(id)
	if err != nil {
		return nil, err
	}
	return s.queryOne(ctx,
		`UPDATE contacts SET bookmarked = $2 WHERE id = $1 RETURNING `+contactColumns,
		key, bookmarked,
	)
}

// UpdateContact implements core.ContactStore.UpdateContact
func (s *ContactStore) UpdateContact(
	ctx context.Context,
	id core.ContactID,
	data core.ContactUpdateData,
) (*core.Contact, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	key, err := bindID(id)
	if err != nil {
		return nil, err
	}
	return s.queryOne(ctx,
		`UPDATE contacts SET
			name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			email = COALESCE($4, email),
			address = COALESCE($5, address),
			bookmarked = COALESCE($6, bookmarked)
		WHERE id = $1
		RETURNING `+contactColumns,
		key, data.Name, data.Phone, data.Email, data.Address, data.Bookmarked,
	)
}

// DeleteContact implements core.ContactStore.DeleteContact
func (s *ContactStore) DeleteContact(ctx context.Context, id core.ContactID) error {
	key, err := bindID(id)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, key)
	if err != nil {
		return convertPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Ping implements core.Pinger.
func (s *ContactStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *ContactStore) queryOne(ctx context.Context, sql string, args ...any) (*core.Contact, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, convertPgError(err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[contactRow])
	if err != nil {
		return nil, convertPgError(err)
	}
	contact := convertContact(row)
	return &contact, nil
}

func (s *ContactStore) queryList(ctx context.Context, sql string, args ...any) ([]core.Contact, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, convertPgError(err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[contactRow])
	if err != nil {
		return nil, convertPgError(err)
	}
	return convertContactList(list), nil
}

func convertContact(row contactRow) core.Contact {
	return core.Contact{
		ID:         core.ContactID(row.ID),
		Name:       row.Name,
		Phone:      row.Phone,
		Email:      row.Email,
		Address:    row.Address,
		Bookmarked: row.Bookmarked,
	}
}

func convertContactList(rows []contactRow) []core.Contact {
	list := make([]core.Contact, len(rows))
	for i, v := range rows {
		list[i] = convertContact(v)
	}
	return list
}

// bindID converts id to the integer type of the id column.
// Ids outside of that range cannot exist in the table.
func bindID(id core.ContactID) (int32, error) {
	if uint64(id) > math.MaxInt32 {
		return 0, core.ErrNotFound
	}
	return int32(id), nil
}

// escapeLike escapes the LIKE wildcards in s, using the default backslash escape character.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
