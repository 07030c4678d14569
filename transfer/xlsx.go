package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prior-it/directory/core"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Contacts"

var spreadsheetHeader = []string{"id", "name", "phone", "email", "address", "bookmarked"}

// ImportSpreadsheet adds one contact per row of the first sheet in r.
// The first row names the columns; name and phone are required, id is ignored.
func ImportSpreadsheet(ctx context.Context, r io.Reader, adder Adder) (*Report, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found in spreadsheet")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("spreadsheet is empty, expected a header row")
	}

	columns := map[string]int{}
	for i, title := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(title))] = i
	}
	for _, required := range []string{"name", "phone"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("spreadsheet has no %q column", required)
		}
	}

	report := &Report{}
	for i, row := range rows[1:] {
		position := i + 2 // 1-based, after the header
		cell := func(column string) string {
			index, ok := columns[column]
			if !ok || index >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[index])
		}
		if isBlank(row) {
			continue
		}

		bookmarked, err := parseBookmarked(cell("bookmarked"))
		if err != nil {
			report.fail(position, cell("name"), err)
			continue
		}
		data := core.ContactCreateData{
			Name:       cell("name"),
			Phone:      cell("phone"),
			Email:      cell("email"),
			Address:    cell("address"),
			Bookmarked: bookmarked,
		}
		if err := report.add(ctx, adder, position, data); err != nil {
			return report, err
		}
	}
	return report, nil
}

// ExportSpreadsheet writes every contact, in listing order, to a single sheet.
func ExportSpreadsheet(ctx context.Context, w io.Writer, lister Lister) (int, error) {
	contacts, err := lister.List(ctx)
	if err != nil {
		return 0, err
	}

	file := excelize.NewFile()
	defer file.Close()
	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(spreadsheetHeader))
	for i, title := range spreadsheetHeader {
		header[i] = title
	}
	if err := file.SetSheetRow(sheetName, "A1", &header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	for i, contact := range contacts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		row := []any{
			uint(contact.ID),
			contact.Name,
			contact.Phone,
			contact.Email,
			contact.Address,
			contact.Bookmarked,
		}
		if err := file.SetSheetRow(sheetName, cell, &row); err != nil {
			return 0, fmt.Errorf("failed to write contact %v: %w", contact.ID, err)
		}
	}
	if err := file.SetColWidth(sheetName, "B", "E", 30); err != nil { //nolint:mnd
		return 0, err
	}

	if err := file.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return len(contacts), nil
}

func isBlank(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
