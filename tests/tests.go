// Package tests contains helpers shared by the test suites of the other packages.
package tests

import (
	"context"
	"log"
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/prior-it/directory/core"
)

var Faker = gofakeit.New(rand.Uint64())

func Check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// RandomContact returns valid creation data filled with fake values.
func RandomContact() core.ContactCreateData {
	return core.ContactCreateData{
		Name:    Faker.Name(),
		Phone:   Faker.Phone(),
		Email:   Faker.Email(),
		Address: Faker.Address().Address,
	}
}

func DeleteAllContacts(store core.ContactStore) {
	ctx := context.Background()
	contacts, err := store.ListContacts(ctx)
	Check(err)
	for _, contact := range contacts {
		Check(store.DeleteContact(ctx, contact.ID))
	}
}

// Ptr returns a pointer to a copy of v, for building partial updates.
func Ptr[T any](v T) *T {
	return &v
}
