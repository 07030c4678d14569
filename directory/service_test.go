package directory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prior-it/directory/core"
	"github.com/prior-it/directory/directory"
	"github.com/prior-it/directory/memory"
	"github.com/prior-it/directory/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newService() *directory.Service {
	return directory.NewService(&memory.ContactStore{})
}

var byID = cmpopts.SortSlices(func(a, b core.Contact) bool { return a.ID < b.ID })

func TestScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("ok: add, search, bookmark, list", func(t *testing.T) {
		service := newService()
		a, err := service.Add(ctx, core.ContactCreateData{Name: "Li Wei", Phone: "123"})
		require.NoError(t, err)
		b, err := service.Add(ctx, core.ContactCreateData{Name: "Wang Fang", Phone: "456"})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)

		found, err := service.Search(ctx, "wei")
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff([]core.Contact{*a}, found))

		bookmarked, err := service.Bookmark(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, bookmarked.Bookmarked)

		list, err := service.List(ctx)
		require.NoError(t, err)
		if assert.Len(t, list, 2) {
			assert.Equal(t, b.ID, list[0].ID)
			assert.Equal(t, a.ID, list[1].ID)
		}

		filtered, err := service.SearchByBookmark(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff([]core.Contact{*bookmarked}, filtered))
	})

	t.Run("ok: bookmark filter follows bookmark changes", func(t *testing.T) {
		service := newService()
		a, err := service.Add(ctx, core.ContactCreateData{Name: "Li Wei", Phone: "123"})
		require.NoError(t, err)
		b, err := service.Add(ctx, core.ContactCreateData{Name: "Wang Fang", Phone: "456", Bookmarked: true})
		require.NoError(t, err)

		filtered, err := service.SearchByBookmark(ctx, directory.BookmarkFilter("1"))
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff([]core.Contact{*b}, filtered))

		a, err = service.Bookmark(ctx, a.ID)
		require.NoError(t, err)

		filtered, err = service.SearchByBookmark(ctx, directory.BookmarkFilter("1"))
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff([]core.Contact{*a, *b}, filtered, byID))
	})

	t.Run("ok: update then delete", func(t *testing.T) {
		service := newService()
		a, err := service.Add(ctx, core.ContactCreateData{Name: "Li Wei", Phone: "123"})
		require.NoError(t, err)

		updated, err := service.Update(ctx, a.ID, core.ContactUpdateData{Phone: tests.Ptr("999")})
		require.NoError(t, err)
		assert.Equal(t, core.Contact{ID: a.ID, Name: "Li Wei", Phone: "999"}, *updated)

		require.NoError(t, service.Delete(ctx, a.ID))
		_, err = service.Get(ctx, a.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("err: add without phone stores nothing", func(t *testing.T) {
		service := newService()
		_, err := service.Add(ctx, core.ContactCreateData{Name: "X"})
		assert.ErrorIs(t, err, core.ErrValidation)

		list, err := service.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("err: emptying the name keeps the stored name", func(t *testing.T) {
		service := newService()
		a, err := service.Add(ctx, core.ContactCreateData{Name: "Li Wei", Phone: "123"})
		require.NoError(t, err)

		_, err = service.Update(ctx, a.ID, core.ContactUpdateData{Name: tests.Ptr("")})
		assert.ErrorIs(t, err, core.ErrValidation)

		contact, err := service.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Li Wei", contact.Name)
	})

	t.Run("err: unknown ids", func(t *testing.T) {
		service := newService()
		_, err := service.Bookmark(ctx, 42)
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = service.Update(ctx, 42, core.ContactUpdateData{Name: tests.Ptr("Y")})
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.ErrorIs(t, service.Delete(ctx, 42), core.ErrNotFound)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("ok: bookmarked contacts come first and nothing is lost", func(t *testing.T) {
		service := newService()
		var created []core.Contact
		for range 20 {
			data := tests.RandomContact()
			data.Bookmarked = tests.Faker.Bool()
			contact, err := service.Add(ctx, data)
			require.NoError(t, err)
			created = append(created, *contact)
		}

		list, err := service.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(created, list, byID), "List should contain every stored contact")

		seenUnbookmarked := false
		for _, contact := range list {
			if !contact.Bookmarked {
				seenUnbookmarked = true
				continue
			}
			assert.False(t, seenUnbookmarked, "Bookmarked contact %v listed after an unbookmarked one", contact.ID)
		}
	})

	t.Run("ok: order inside a group is kept", func(t *testing.T) {
		service := newService()
		var ids []core.ContactID
		for range 4 {
			contact, err := service.Add(ctx, tests.RandomContact())
			require.NoError(t, err)
			ids = append(ids, contact.ID)
		}
		_, err := service.Bookmark(ctx, ids[3])
		require.NoError(t, err)
		_, err = service.Bookmark(ctx, ids[1])
		require.NoError(t, err)

		list, err := service.List(ctx)
		require.NoError(t, err)
		var got []core.ContactID
		for _, contact := range list {
			got = append(got, contact.ID)
		}
		assert.Equal(t, []core.ContactID{ids[1], ids[3], ids[0], ids[2]}, got)
	})

	t.Run("ok: empty directory", func(t *testing.T) {
		list, err := newService().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestBookmark(t *testing.T) {
	ctx := context.Background()

	t.Run("ok: bookmarking twice is a no-op", func(t *testing.T) {
		service := newService()
		contact, err := service.Add(ctx, tests.RandomContact())
		require.NoError(t, err)

		first, err := service.Bookmark(ctx, contact.ID)
		require.NoError(t, err)
		second, err := service.Bookmark(ctx, contact.ID)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(first, second))
	})

	t.Run("ok: only an update removes a bookmark", func(t *testing.T) {
		service := newService()
		contact, err := service.Add(ctx, tests.RandomContact())
		require.NoError(t, err)
		_, err = service.Bookmark(ctx, contact.ID)
		require.NoError(t, err)

		updated, err := service.Update(ctx, contact.ID, core.ContactUpdateData{Bookmarked: tests.Ptr(false)})
		require.NoError(t, err)
		assert.False(t, updated.Bookmarked)
	})

	t.Run("ok: concurrent callers", func(t *testing.T) {
		service := newService()
		contact, err := service.Add(ctx, tests.RandomContact())
		require.NoError(t, err)

		g, gctx := errgroup.WithContext(ctx)
		for i := range 10 {
			g.Go(func() error {
				if i%2 == 0 {
					_, err := service.Bookmark(gctx, contact.ID)
					return err
				}
				_, err := service.Update(gctx, contact.ID, core.ContactUpdateData{Email: tests.Ptr("x@example.com")})
				return err
			})
		}
		require.NoError(t, g.Wait())

		stored, err := service.Get(ctx, contact.ID)
		require.NoError(t, err)
		assert.True(t, stored.Bookmarked)
		assert.Equal(t, "x@example.com", stored.Email)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	service := newService()
	for _, name := range []string{"Li Wei", "Wang Fang", "Weiss"} {
		_, err := service.Add(ctx, core.ContactCreateData{Name: name, Phone: "1"})
		require.NoError(t, err)
	}

	t.Run("ok: empty query returns everything", func(t *testing.T) {
		all, err := service.Search(ctx, "")
		require.NoError(t, err)
		list, err := service.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(list, all, byID))
	})

	t.Run("ok: substring matches ignore case", func(t *testing.T) {
		found, err := service.Search(ctx, "WEI")
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("ok: no bookmark filter returns everything", func(t *testing.T) {
		found, err := service.SearchByBookmark(ctx, directory.BookmarkFilter("0"))
		require.NoError(t, err)
		assert.Len(t, found, 3)
	})
}

type failingStore struct {
	core.ContactStore
}

func (failingStore) ListContacts(context.Context) ([]core.Contact, error) {
	return nil, core.ErrStoreUnavailable
}

func TestStoreErrors(t *testing.T) {
	t.Run("err: store errors are returned unchanged", func(t *testing.T) {
		_, err := directory.NewService(failingStore{}).List(context.Background())
		assert.True(t, errors.Is(err, core.ErrStoreUnavailable))
	})
}

func TestBookmarkFilter(t *testing.T) {
	for raw, want := range map[string]bool{
		"":      false,
		"0":     false,
		"1":     true,
		"true":  true,
		"false": true,
		"00":    true,
	} {
		assert.Equal(t, want, directory.BookmarkFilter(raw), "BookmarkFilter(%q)", raw)
	}
}
