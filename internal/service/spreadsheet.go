package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/harborline/freightdesk/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads the first sheet of an xlsx workbook into raw rows.
// The first row is the header; header cells are snake_cased into field
// names. Fully empty rows are skipped. Cell content is not validated or
// typed here; rows go through the module's shaper like any other input.
// Parameters:
//   - r: workbook content.
// Returns:
//   - []domain.RawRow: one raw row per populated data row.
//   - error: domain.ErrInvalidRequest-wrapped for unreadable or empty
//     workbooks.
func ParseWorkbook(r io.Reader) ([]domain.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable workbook: %v", domain.ErrInvalidRequest, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidRequest)
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", domain.ErrInvalidRequest, sheets[0], err)
	}
	if len(cells) < 2 {
		return nil, fmt.Errorf("%w: sheet %q has no data rows", domain.ErrInvalidRequest, sheets[0])
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = headerField(h)
	}

	var rows []domain.RawRow
	for _, line := range cells[1:] {
		row := domain.RawRow{}
		empty := true
		for i, cell := range line {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			row[header[i]] = cell
			empty = false
		}
		if !empty {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no data rows", domain.ErrInvalidRequest, sheets[0])
	}
	return rows, nil
}

// headerField snake_cases a header cell: "Container Number" becomes
// "container_number".
func headerField(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.FieldsFunc(h, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == '.'
	}), "_")
}
