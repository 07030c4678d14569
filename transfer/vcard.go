package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/prior-it/directory/core"
)

const bookmarkedCategory = "bookmarked"

// ImportVCards adds one contact per vCard in r.
// Multiple TEL fields are joined into a single phone value.
func ImportVCards(ctx context.Context, r io.Reader, adder Adder) (*Report, error) {
	decoder := vcard.NewDecoder(r)
	report := &Report{}
	for position := 1; ; position++ {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		if err != nil {
			// The decoder cannot resynchronise after a malformed card.
			return report, fmt.Errorf("failed to read vcard %d: %w", position, err)
		}
		if err := report.add(ctx, adder, position, cardToContact(card)); err != nil {
			return report, err
		}
	}
}

// ExportVCards writes every contact, in listing order, as a vCard 4.0.
func ExportVCards(ctx context.Context, w io.Writer, lister Lister) (int, error) {
	contacts, err := lister.List(ctx)
	if err != nil {
		return 0, err
	}
	encoder := vcard.NewEncoder(w)
	for i := range contacts {
		if err := encoder.Encode(contactToCard(&contacts[i])); err != nil {
			return i, fmt.Errorf("failed to write contact %v: %w", contacts[i].ID, err)
		}
	}
	return len(contacts), nil
}

func contactToCard(contact *core.Contact) vcard.Card {
	card := vcard.Card{}
	card.SetValue(vcard.FieldFormattedName, contact.Name)
	card.SetName(&vcard.Name{GivenName: contact.Name})
	for _, phone := range splitPhones(contact.Phone) {
		card.AddValue(vcard.FieldTelephone, phone)
	}
	if contact.Email != "" {
		card.SetValue(vcard.FieldEmail, contact.Email)
	}
	if contact.Address != "" {
		card.SetAddress(&vcard.Address{StreetAddress: contact.Address})
	}
	if contact.Bookmarked {
		card.SetValue(vcard.FieldCategories, bookmarkedCategory)
	}
	vcard.ToV4(card)
	return card
}

func cardToContact(card vcard.Card) core.ContactCreateData {
	data := core.ContactCreateData{
		Name:  strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName)),
		Phone: strings.Join(card.Values(vcard.FieldTelephone), ", "),
		Email: strings.TrimSpace(card.PreferredValue(vcard.FieldEmail)),
	}
	if data.Name == "" {
		if name := card.Name(); name != nil {
			data.Name = joinNonEmpty(" ", name.GivenName, name.AdditionalName, name.FamilyName)
		}
	}
	if address := card.Address(); address != nil {
		data.Address = joinNonEmpty(", ",
			address.PostOfficeBox,
			address.ExtendedAddress,
			address.StreetAddress,
			address.Locality,
			address.Region,
			address.PostalCode,
			address.Country,
		)
	}
	for _, value := range card.Values(vcard.FieldCategories) {
		for _, category := range strings.Split(value, ",") {
			if strings.EqualFold(strings.TrimSpace(category), bookmarkedCategory) {
				data.Bookmarked = true
			}
		}
	}
	return data
}

// splitPhones splits a phone value holding several numbers.
func splitPhones(phone string) []string {
	parts := strings.FieldsFunc(phone, func(r rune) bool {
		return r == ',' || r == ';' || r == '/'
	})
	phones := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			phones = append(phones, part)
		}
	}
	return phones
}

func joinNonEmpty(separator string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, separator)
}
