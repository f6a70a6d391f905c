package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/harborline/freightdesk/internal/domain"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestParseWorkbook(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"Container Number", "Carrier", "Amount"},
		{"TCNU0000001", "ACME Haulage", "120.50"},
		{"", "", ""},
		{"TCNU0000002", "Baltic Freight", "88.00"},
	})

	rows, err := ParseWorkbook(buf)
	if err != nil {
		t.Fatalf("ParseWorkbook failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (empty rows skipped)", len(rows))
	}
	if rows[0].Field("container_number") != "TCNU0000001" {
		t.Fatalf("header not snake_cased: %v", rows[0])
	}
	if rows[1].Field("carrier") != "Baltic Freight" {
		t.Fatalf("row 2 = %v", rows[1])
	}
}

func TestParseWorkbookGarbageInput(t *testing.T) {
	_, err := ParseWorkbook(strings.NewReader("this is not a workbook"))
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestParseWorkbookHeaderOnly(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"Container Number", "Carrier"},
	})

	_, err := ParseWorkbook(buf)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest for a header-only sheet", err)
	}
}
