package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

/**
 * DOMAIN
 */

type Contact struct {
	ID      ContactID
	Name    string
	Phone   string
	Email   string
	Address string
	// Bookmarked contacts are listed before all others.
	Bookmarked bool
}

type (
	ContactID uint
)

func (id ContactID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// NewContactID parses a contact id from any unsigned integer.
func NewContactID(id uint) (ContactID, error) {
	if id == 0 {
		return 0, errors.New("ContactID cannot be 0")
	}
	return ContactID(id), nil
}

// ParseContactID parses a string into a contact id.
func ParseContactID(id string) (ContactID, error) {
	integerID, err := strconv.Atoi(id)
	if err != nil {
		return 0, fmt.Errorf("cannot parse contact id: %w", err)
	}
	if integerID < 0 {
		return 0, errors.New("cannot parse contact id: contact ids cannot be negative")
	}
	contactID, err := NewContactID(uint(integerID))
	if err != nil {
		return 0, fmt.Errorf("cannot parse contact id: %w", err)
	}
	return contactID, nil
}

// MatchesName reports whether query is a case-insensitive substring of name.
// An empty query matches every name.
func MatchesName(name string, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}

/**
 * APPLICATION
 */

type ContactCreateData struct {
	Name       string
	Phone      string
	Email      string
	Address    string
	Bookmarked bool
}

// Validate returns ErrValidation if a required field is missing.
func (data ContactCreateData) Validate() error {
	if data.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if data.Phone == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	return nil
}

// ContactUpdateData holds a partial update: nil fields are left unchanged.
// A full replace is an update that supplies every field.
type ContactUpdateData struct {
	Name       *string
	Phone      *string
	Email      *string
	Address    *string
	Bookmarked *bool
}

// Validate returns ErrValidation if the update would empty a required field.
func (data ContactUpdateData) Validate() error {
	if data.Name != nil && *data.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if data.Phone != nil && *data.Phone == "" {
		return fmt.Errorf("%w: phone cannot be empty", ErrValidation)
	}
	return nil
}

// Apply copies every supplied field onto contact.
func (data ContactUpdateData) Apply(contact *Contact) {
	if data.Name != nil {
		contact.Name = *data.Name
	}
	if data.Phone != nil {
		contact.Phone = *data.Phone
	}
	if data.Email != nil {
		contact.Email = *data.Email
	}
	if data.Address != nil {
		contact.Address = *data.Address
	}
	if data.Bookmarked != nil {
		contact.Bookmarked = *data.Bookmarked
	}
}

type ContactStore interface {
	// Create a new contact with the specified data or ErrValidation if name or phone is empty.
	CreateContact(ctx context.Context, data ContactCreateData) (*Contact, error)
	// Retrieve all existing contacts, in no particular order.
	ListContacts(ctx context.Context) ([]Contact, error)
	// Retrieve the contact with the specified id or ErrNotFound if no such contact exists.
	GetContact(ctx context.Context, id ContactID) (*Contact, error)
	// Retrieve the contacts whose name contains the query, ignoring case. An empty query returns all contacts.
	FindContactsByName(ctx context.Context, query string) ([]Contact, error)
	// Retrieve only bookmarked contacts if bookmarked is true, all contacts otherwise.
	FindContactsByBookmark(ctx context.Context, bookmarked bool) ([]Contact, error)
	// Set the bookmark flag of the contact with the specified id or return ErrNotFound if no such contact exists.
	SetContactBookmarked(ctx context.Context, id ContactID, bookmarked bool) (*Contact, error)
	// Update the supplied fields of the contact with the specified id.
	// Returns ErrNotFound if no such contact exists and ErrValidation if name or phone would become empty.
	UpdateContact(ctx context.Context, id ContactID, data ContactUpdateData) (*Contact, error)
	// Delete the contact with the specified id or return ErrNotFound if no such contact exists.
	DeleteContact(ctx context.Context, id ContactID) error
}

// Pinger is implemented by stores that depend on an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}
