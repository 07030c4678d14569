package tests

import (
	"context"
	"sync"
	"testing"

	"github.com/prior-it/directory/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContactStoreSuite runs the behaviour every core.ContactStore implementation must share.
// newStore is called once per subtest and must return an empty store.
func ContactStoreSuite(t *testing.T, newStore func(t *testing.T) core.ContactStore) {
	ctx := context.Background()

	t.Run("ok: create then get returns the same fields", func(t *testing.T) {
		store := newStore(t)
		data := RandomContact()
		data.Bookmarked = Faker.Bool()

		created, err := store.CreateContact(ctx, data)
		require.NoError(t, err)
		assert.NotZero(t, created.ID, "The store should assign an id")

		contact, err := store.GetContact(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, core.Contact{
			ID:         created.ID,
			Name:       data.Name,
			Phone:      data.Phone,
			Email:      data.Email,
			Address:    data.Address,
			Bookmarked: data.Bookmarked,
		}, *contact)
	})

	t.Run("ok: optional fields default to empty", func(t *testing.T) {
		store := newStore(t)
		contact, err := store.CreateContact(ctx, core.ContactCreateData{Name: "Li Wei", Phone: "123"})
		require.NoError(t, err)
		assert.Empty(t, contact.Email)
		assert.Empty(t, contact.Address)
		assert.False(t, contact.Bookmarked)
	})

	t.Run("err: create without name or phone", func(t *testing.T) {
		store := newStore(t)
		for _, data := range []core.ContactCreateData{
			{Phone: Faker.Phone()},
			{Name: Faker.Name()},
			{},
		} {
			contact, err := store.CreateContact(ctx, data)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.Nil(t, contact)
		}
		contacts, err := store.ListContacts(ctx)
		require.NoError(t, err)
		assert.Empty(t, contacts, "Invalid contacts should not be stored")
	})

	t.Run("ok: list returns every contact", func(t *testing.T) {
		store := newStore(t)
		ids := map[core.ContactID]bool{}
		for range 5 {
			contact, err := store.CreateContact(ctx, RandomContact())
			require.NoError(t, err)
			ids[contact.ID] = true
		}
		contacts, err := store.ListContacts(ctx)
		require.NoError(t, err)
		assert.Len(t, contacts, len(ids))
		for _, contact := range contacts {
			assert.True(t, ids[contact.ID], "Listed contact %v should have been created", contact.ID)
		}
	})

	t.Run("ok: name search is a case-insensitive substring match", func(t *testing.T) {
		store := newStore(t)
		a, err := store.CreateContact(ctx, core.ContactCreateData{Name: "Li Wei", Phone: "123"})
		require.NoError(t, err)
		_, err = store.CreateContact(ctx, core.ContactCreateData{Name: "Wang Fang", Phone: "456"})
		require.NoError(t, err)
		_, err = store.CreateContact(ctx, core.ContactCreateData{Name: "50% Off", Phone: "789"})
		require.NoError(t, err)

		for _, query := range []string{"Wei", "wei", "LI W", "i w"} {
			contacts, err := store.FindContactsByName(ctx, query)
			require.NoError(t, err)
			if assert.Len(t, contacts, 1, query) {
				assert.Equal(t, a.ID, contacts[0].ID, query)
			}
		}

		contacts, err := store.FindContactsByName(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, contacts)

		contacts, err = store.FindContactsByName(ctx, "%")
		require.NoError(t, err)
		assert.Len(t, contacts, 1, "Wildcards in the query should match literally")
		contacts, err = store.FindContactsByName(ctx, "_")
		require.NoError(t, err)
		assert.Empty(t, contacts, "Wildcards in the query should match literally")
	})

	t.Run("ok: empty name search returns all contacts", func(t *testing.T) {
		store := newStore(t)
		for range 3 {
			_, err := store.CreateContact(ctx, RandomContact())
			require.NoError(t, err)
		}
		all, err := store.ListContacts(ctx)
		require.NoError(t, err)
		found, err := store.FindContactsByName(ctx, "")
		require.NoError(t, err)
		assert.ElementsMatch(t, all, found)
	})

	t.Run("ok: bookmark search only narrows when requested", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreateContact(ctx, core.ContactCreateData{Name: "Li Wei", Phone: "123"})
		require.NoError(t, err)
		b, err := store.CreateContact(
			ctx,
			core.ContactCreateData{Name: "Wang Fang", Phone: "456", Bookmarked: true},
		)
		require.NoError(t, err)

		bookmarked, err := store.FindContactsByBookmark(ctx, true)
		require.NoError(t, err)
		if assert.Len(t, bookmarked, 1) {
			assert.Equal(t, b.ID, bookmarked[0].ID)
		}

		all, err := store.FindContactsByBookmark(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 2, "A false flag should not filter anything")
	})

	t.Run("ok: setting the bookmark is idempotent", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateContact(ctx, RandomContact())
		require.NoError(t, err)

		once, err := store.SetContactBookmarked(ctx, created.ID, true)
		require.NoError(t, err)
		assert.True(t, once.Bookmarked)
		twice, err := store.SetContactBookmarked(ctx, created.ID, true)
		require.NoError(t, err)
		assert.Equal(t, once, twice)

		cleared, err := store.SetContactBookmarked(ctx, created.ID, false)
		require.NoError(t, err)
		assert.False(t, cleared.Bookmarked)
	})

	t.Run("err: bookmark unknown contact", func(t *testing.T) {
		store := newStore(t)
		contact, err := store.SetContactBookmarked(ctx, 999999, true)
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Nil(t, contact)
	})

	t.Run("ok: partial update leaves other fields unchanged", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateContact(ctx, RandomContact())
		require.NoError(t, err)

		newAddress := Faker.Address().Address
		updated, err := store.UpdateContact(ctx, created.ID, core.ContactUpdateData{
			Address: &newAddress,
		})
		require.NoError(t, err)
		want := *created
		want.Address = newAddress
		assert.Equal(t, want, *updated)

		stored, err := store.GetContact(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, want, *stored)
	})

	t.Run("ok: full update replaces every field", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateContact(ctx, RandomContact())
		require.NoError(t, err)

		data := RandomContact()
		updated, err := store.UpdateContact(ctx, created.ID, core.ContactUpdateData{
			Name:       &data.Name,
			Phone:      &data.Phone,
			Email:      Ptr(""),
			Address:    &data.Address,
			Bookmarked: Ptr(true),
		})
		require.NoError(t, err)
		assert.Equal(t, core.Contact{
			ID:         created.ID,
			Name:       data.Name,
			Phone:      data.Phone,
			Address:    data.Address,
			Bookmarked: true,
		}, *updated)
	})

	t.Run("err: update cannot empty required fields", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateContact(ctx, core.ContactCreateData{Name: "Li Wei", Phone: "123"})
		require.NoError(t, err)

		for _, data := range []core.ContactUpdateData{
			{Name: Ptr("")},
			{Phone: Ptr("")},
			{Name: Ptr(""), Email: Ptr("li@example.com")},
		} {
			contact, err := store.UpdateContact(ctx, created.ID, data)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.Nil(t, contact)
		}

		stored, err := store.GetContact(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, *created, *stored, "A failed update should not change the contact")
	})

	t.Run("err: update unknown contact", func(t *testing.T) {
		store := newStore(t)
		contact, err := store.UpdateContact(ctx, 999999, core.ContactUpdateData{Name: Ptr("x")})
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Nil(t, contact)
	})

	t.Run("err: invalid update of unknown contact", func(t *testing.T) {
		store := newStore(t)
		contact, err := store.UpdateContact(ctx, 999999, core.ContactUpdateData{Name: Ptr("")})
		assert.ErrorIs(t, err, core.ErrValidation, "Validation should be reported before the lookup")
		assert.Nil(t, contact)
	})

	t.Run("err: large ids do not alias existing contacts", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateContact(ctx, RandomContact())
		require.NoError(t, err)
		// Equal to created.ID in its lower 32 bits.
		alias := core.ContactID(uint64(created.ID) + 1<<32)

		_, err = store.GetContact(ctx, alias)
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = store.SetContactBookmarked(ctx, alias, true)
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = store.UpdateContact(ctx, alias, core.ContactUpdateData{Name: Ptr("x")})
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.ErrorIs(t, store.DeleteContact(ctx, alias), core.ErrNotFound)

		stored, err := store.GetContact(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, *created, *stored, "The existing contact should be untouched")
	})

	t.Run("ok: delete contact", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateContact(ctx, RandomContact())
		require.NoError(t, err)

		require.NoError(t, store.DeleteContact(ctx, created.ID))

		contact, err := store.GetContact(ctx, created.ID)
		assert.ErrorIs(t, err, core.ErrNotFound, "Getting a deleted contact should return ErrNotFound")
		assert.Nil(t, contact)

		err = store.DeleteContact(ctx, created.ID)
		assert.ErrorIs(t, err, core.ErrNotFound, "Deleting twice should return ErrNotFound")
	})

	t.Run("ok: ids are never reused", func(t *testing.T) {
		store := newStore(t)
		first, err := store.CreateContact(ctx, RandomContact())
		require.NoError(t, err)
		second, err := store.CreateContact(ctx, RandomContact())
		require.NoError(t, err)
		require.NoError(t, store.DeleteContact(ctx, second.ID))

		third, err := store.CreateContact(ctx, RandomContact())
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, third.ID)
		assert.NotEqual(t, second.ID, third.ID)
	})

	t.Run("ok: concurrent bookmarks and updates", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateContact(ctx, RandomContact())
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := store.SetContactBookmarked(ctx, created.ID, true)
				assert.NoError(t, err)
			}()
			go func() {
				defer wg.Done()
				_, err := store.UpdateContact(ctx, created.ID, core.ContactUpdateData{
					Email: Ptr(Faker.Email()),
				})
				assert.NoError(t, err, "update %d", i)
			}()
		}
		wg.Wait()

		stored, err := store.GetContact(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, stored.Bookmarked)
		assert.Equal(t, created.Name, stored.Name)
	})
}
