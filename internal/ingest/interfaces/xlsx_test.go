package interfaces

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	for i, cells := range rows {
		for j, cell := range cells {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", name, cell); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestRowsFromXLSX(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Jahr", "Monat", "Dach_kWh", ""},
		{2026, 1, "500,5"},
		{2026, 2, ""},
	})

	rows, err := RowsFromXLSX(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["Jahr"] != "2026" || rows[0]["Dach_kWh"] != "500,5" {
		t.Fatalf("first row = %v", rows[0])
	}
	if _, ok := rows[0][""]; ok {
		t.Fatal("blank header cells must be dropped")
	}
}

func TestRowsFromXLSXKeepsBlankRowsInPlace(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Jahr", "Monat"},
		{"", ""},
		{2026, 3},
	})

	rows, err := RowsFromXLSX(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, blank row must keep its slot", len(rows))
	}
	if rows[1]["Jahr"] != "2026" {
		t.Fatalf("second row = %v", rows[1])
	}
}

func TestRowsFromXLSXRejectsGarbage(t *testing.T) {
	if _, err := RowsFromXLSX(strings.NewReader("not a workbook")); err == nil {
		t.Fatal("expected error for invalid file")
	}
}
