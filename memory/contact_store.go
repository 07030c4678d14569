// Package memory provides an in-process implementation of the core stores.
// It is the default backend and the one used by most tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/prior-it/directory/core"
)

// ContactStore implements [core.ContactStore].
type ContactStore struct {
	mu       sync.Mutex
	lastID   core.ContactID
	contacts map[core.ContactID]*core.Contact
}

// Force struct to implement the core interface
var _ core.ContactStore = (*ContactStore)(nil)

// NewContactStore returns a store seeded with the specified contacts.
func NewContactStore(seed ...core.ContactCreateData) (*ContactStore, error) {
	s := &ContactStore{contacts: make(map[core.ContactID]*core.Contact, len(seed))}
	for _, data := range seed {
		if _, err := s.CreateContact(context.Background(), data); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CreateContact implements core.ContactStore.
func (s *ContactStore) CreateContact(
	_ context.Context,
	data core.ContactCreateData,
) (*core.Contact, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contacts == nil {
		s.contacts = make(map[core.ContactID]*core.Contact)
	}
	s.lastID++
	contact := &core.Contact{
		ID:         s.lastID,
		Name:       data.Name,
		Phone:      data.Phone,
		Email:      data.Email,
		Address:    data.Address,
		Bookmarked: data.Bookmarked,
	}
	s.contacts[contact.ID] = contact
	return copyOf(contact), nil
}

// ListContacts implements core.ContactStore.
func (s *ContactStore) ListContacts(_ context.Context) ([]core.Contact, error) {
	return s.filter(func(*core.Contact) bool { return true }), nil
}

// GetContact implements core.ContactStore.
func (s *ContactStore) GetContact(_ context.Context, id core.ContactID) (*core.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, ok := s.contacts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return copyOf(contact), nil
}

// FindContactsByName implements core.ContactStore.
func (s *ContactStore) FindContactsByName(_ context.Context, query string) ([]core.Contact, error) {
	return s.filter(func(c *core.Contact) bool { return core.MatchesName(c.Name, query) }), nil
}

// FindContactsByBookmark implements core.ContactStore.
func (s *ContactStore) FindContactsByBookmark(
	_ context.Context,
	bookmarked bool,
) ([]core.Contact, error) {
	return s.filter(func(c *core.Contact) bool { return !bookmarked || c.Bookmarked }), nil
}

// SetContactBookmarked implements core.ContactStore.
func (s *ContactStore) SetContactBookmarked(
	ctx context.Context,
	id core.ContactID,
	bookmarked bool,
) (*core.Contact, error) {
	return s.UpdateContact(ctx, id, core.ContactUpdateData{Bookmarked: &bookmarked})
}

// UpdateContact implements core.ContactStore.
func (s *ContactStore) UpdateContact(
	_ context.Context,
	id core.ContactID,
	data core.ContactUpdateData,
) (*core.Contact, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, ok := s.contacts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	data.Apply(contact)
	return copyOf(contact), nil
}

// DeleteContact implements core.ContactStore.
func (s *ContactStore) DeleteContact(_ context.Context, id core.ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

// filter returns copies of the matching contacts in creation order.
func (s *ContactStore) filter(keep func(*core.Contact) bool) []core.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]core.Contact, 0, len(s.contacts))
	for _, contact := range s.contacts {
		if keep(contact) {
			list = append(list, *contact)
		}
	}
	slices.SortFunc(list, func(a, b core.Contact) int { return cmp.Compare(a.ID, b.ID) })
	return list
}

func copyOf(contact *core.Contact) *core.Contact {
	c := *contact
	return &c
}
