// Package transfer moves contacts between a directory and files: spreadsheets (.xlsx) and vCards (.vcf).
//
// Imports are best-effort: every record is added on its own and failures are collected in a Report,
// except for an unavailable store or a cancelled context, which stop the import.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prior-it/directory/core"
)

// Adder is the part of directory.Service used by imports.
type Adder interface {
	Add(ctx context.Context, data core.ContactCreateData) (*core.Contact, error)
}

// Lister is the part of directory.Service used by exports.
type Lister interface {
	List(ctx context.Context) ([]core.Contact, error)
}

type Format string

const (
	FormatSpreadsheet Format = "xlsx"
	FormatVCard       Format = "vcf"
)

var ErrUnknownFormat = errors.New("unknown file format")

// FormatOf picks the transfer format from the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatSpreadsheet, nil
	case ".vcf", ".vcard":
		return FormatVCard, nil
	}
	return "", fmt.Errorf("%w: %q, expected .xlsx or .vcf", ErrUnknownFormat, filepath.Ext(path))
}

// RecordError is a record that could not be imported.
type RecordError struct {
	// Position of the record in the file, starting at 1. For spreadsheets this is the row number.
	Position int
	Name     string
	Err      error
}

func (e RecordError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("record %d: %v", e.Position, e.Err)
	}
	return fmt.Sprintf("record %d (%s): %v", e.Position, e.Name, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

type Report struct {
	Imported []core.Contact
	Failed   []RecordError
}

// Total is the number of records that were read from the file.
func (r *Report) Total() int {
	return len(r.Imported) + len(r.Failed)
}

// add stores a single record and reports whether the import can go on.
func (r *Report) add(ctx context.Context, adder Adder, position int, data core.ContactCreateData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	contact, err := adder.Add(ctx, data)
	switch {
	case err == nil:
		r.Imported = append(r.Imported, *contact)
	case errors.Is(err, core.ErrStoreUnavailable), errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		r.Failed = append(r.Failed, RecordError{Position: position, Name: data.Name, Err: err})
	}
	return nil
}

func (r *Report) fail(position int, name string, err error) {
	r.Failed = append(r.Failed, RecordError{Position: position, Name: name, Err: err})
}

// parseBookmarked reads a bookmark cell. Empty means not bookmarked.
func parseBookmarked(value string) (bool, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "":
		return false, nil
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	bookmarked, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: bookmarked must be true or false, got %q", core.ErrValidation, value)
	}
	return bookmarked, nil
}
