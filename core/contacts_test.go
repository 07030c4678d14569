package core_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/prior-it/directory/core"
	"github.com/prior-it/directory/tests"
	"github.com/stretchr/testify/assert"
)

func FuzzContactID(f *testing.F) {
	for _, seed := range []string{"0", "1", "-1", "abc", "", "4294967296"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, value string) {
		id, err := core.ParseContactID(value)
		// We're not looking for valid ids here but rather for unexpected errors leading to a panic
		if err != nil {
			assert.Zero(t, id, "If there is an error, the id should be zero")
		}
	})
}

func TestContactID(t *testing.T) {
	t.Run("ok: parse valid id", func(t *testing.T) {
		id, err := core.ParseContactID("42")
		assert.Nil(t, err)
		assert.Equal(t, core.ContactID(42), id)
		assert.Equal(t, "42", id.String())
	})

	t.Run("err: zero and negative ids are invalid", func(t *testing.T) {
		for _, value := range []string{"0", "-3", "x"} {
			_, err := core.ParseContactID(value)
			assert.Error(t, err, value)
		}
	})
}

func TestContactCreateData(t *testing.T) {
	t.Run("ok: name and phone are enough", func(t *testing.T) {
		data := core.ContactCreateData{Name: tests.Faker.Name(), Phone: tests.Faker.Phone()}
		assert.Nil(t, data.Validate())
	})

	t.Run("err: name or phone missing", func(t *testing.T) {
		for _, data := range []core.ContactCreateData{
			{Phone: "123"},
			{Name: "Li Wei"},
			{Email: tests.Faker.Email()},
		} {
			assert.ErrorIs(t, data.Validate(), core.ErrValidation)
		}
	})
}

func TestContactUpdateData(t *testing.T) {
	t.Run("ok: only supplied fields change", func(t *testing.T) {
		contact := core.Contact{ID: 1, Name: "Li Wei", Phone: "123", Email: "li@example.com"}
		address := "Beijing"
		bookmarked := true
		data := core.ContactUpdateData{Address: &address, Bookmarked: &bookmarked}
		assert.Nil(t, data.Validate())

		data.Apply(&contact)
		assert.Equal(t, core.Contact{
			ID:         1,
			Name:       "Li Wei",
			Phone:      "123",
			Email:      "li@example.com",
			Address:    "Beijing",
			Bookmarked: true,
		}, contact)
	})

	t.Run("ok: optional fields can be cleared", func(t *testing.T) {
		empty := ""
		data := core.ContactUpdateData{Email: &empty, Address: &empty}
		assert.Nil(t, data.Validate())
	})

	t.Run("err: required fields cannot be emptied", func(t *testing.T) {
		empty := ""
		err := core.ContactUpdateData{Name: &empty}.Validate()
		assert.True(t, errors.Is(err, core.ErrValidation))
		err = core.ContactUpdateData{Phone: &empty}.Validate()
		assert.True(t, errors.Is(err, core.ErrValidation))
	})
}

func TestMatchesName(t *testing.T) {
	t.Run("ok: substring ignores case", func(t *testing.T) {
		assert.True(t, core.MatchesName("Li Wei", "wei"))
		assert.True(t, core.MatchesName("Li Wei", "LI W"))
		assert.True(t, core.MatchesName("王芳", "芳"))
		assert.False(t, core.MatchesName("Wang Fang", "Wei"))
	})

	t.Run("ok: empty query matches everything", func(t *testing.T) {
		name := tests.Faker.Name()
		assert.True(t, core.MatchesName(name, ""))
		assert.True(t, core.MatchesName(name, strings.ToUpper(name)))
	})

	t.Run("ok: wildcards are literal", func(t *testing.T) {
		assert.False(t, core.MatchesName("Li Wei", "%"))
		assert.True(t, core.MatchesName("100% Li", "0%"))
	})
}
