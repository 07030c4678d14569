// Package directory holds the contact directory policy on top of a core.ContactStore.
//
// The service keeps no state of its own; every call goes to the store it was built with.
package directory

import (
	"context"
	"slices"

	"github.com/prior-it/directory/core"
)

type Service struct {
	store core.ContactStore
}

func NewService(store core.ContactStore) *Service {
	return &Service{store: store}
}

// Store returns the store the service was constructed with.
func (s *Service) Store() core.ContactStore {
	return s.store
}

// List returns every contact with all bookmarked contacts first.
// The relative order inside each group is the order the store returned them in.
func (s *Service) List(ctx context.Context) ([]core.Contact, error) {
	contacts, err := s.store.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(contacts, func(a, b core.Contact) int {
		switch {
		case a.Bookmarked == b.Bookmarked:
			return 0
		case a.Bookmarked:
			return -1
		default:
			return 1
		}
	})
	return contacts, nil
}

func (s *Service) Get(ctx context.Context, id core.ContactID) (*core.Contact, error) {
	return s.store.GetContact(ctx, id)
}

// Add validates data and stores it as a new contact.
func (s *Service) Add(ctx context.Context, data core.ContactCreateData) (*core.Contact, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return s.store.CreateContact(ctx, data)
}

// Search returns the contacts whose name contains name, ignoring case.
// Results are not re-sorted.
func (s *Service) Search(ctx context.Context, name string) ([]core.Contact, error) {
	return s.store.FindContactsByName(ctx, name)
}

// SearchByBookmark returns only bookmarked contacts when bookmarked is true and every contact otherwise.
func (s *Service) SearchByBookmark(ctx context.Context, bookmarked bool) ([]core.Contact, error) {
	return s.store.FindContactsByBookmark(ctx, bookmarked)
}

// Bookmark marks a contact as bookmarked. Bookmarking twice is a no-op.
func (s *Service) Bookmark(ctx context.Context, id core.ContactID) (*core.Contact, error) {
	return s.store.SetContactBookmarked(ctx, id, true)
}

// Update changes the supplied fields of a contact.
// Passing Bookmarked=false is the only way to remove a bookmark.
func (s *Service) Update(
	ctx context.Context,
	id core.ContactID,
	data core.ContactUpdateData,
) (*core.Contact, error) {
	return s.store.UpdateContact(ctx, id, data)
}

func (s *Service) Delete(ctx context.Context, id core.ContactID) error {
	return s.store.DeleteContact(ctx, id)
}

// BookmarkFilter interprets a raw bookmark filter value: empty or "0" disables the filter.
func BookmarkFilter(raw string) bool {
	return raw != "" && raw != "0"
}
