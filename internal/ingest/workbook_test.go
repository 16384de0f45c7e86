package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/reliefdata/sitewatch/internal/sitedata"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for r, cells := range rows {
		for c, val := range cells {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestDecodeWorkbook(t *testing.T) {
	r := buildWorkbook(t, "Sheet1", [][]any{
		{"PCode", "Site Status", "Total number of Households", ""},
		{"0001-01-001", "Active", 10, "note"},
		{"0002-01-002", "", ""},
	})

	rows, err := DecodeWorkbook(r, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	if got := rows[0].Get("PCode").AsText(); got != "0001-01-001" {
		t.Errorf("PCode = %q", got)
	}
	if got := rows[0].Get(sitedata.ColHouseholds); got.Kind() != sitedata.KindNumber || got.AsNumber() != 10 {
		t.Errorf("households cell = %+v", got)
	}
	// Blank header gets a placeholder name.
	if got := rows[0].Get("Column_4").AsText(); got != "note" {
		t.Errorf("placeholder column = %q", got)
	}
	// Blank cells read back as the empty cell.
	if !rows[1].Get("Site Status").IsEmpty() {
		t.Error("blank status should be empty")
	}
	if rows[1].Get(sitedata.ColHouseholds).AsNumber() != 0 {
		t.Error("missing numeric should coerce to 0")
	}
}

func TestDecodeWorkbookNamedSheet(t *testing.T) {
	r := buildWorkbook(t, "IS Sites", [][]any{
		{"PCode"},
		{"0001"},
	})

	rows, err := DecodeWorkbook(r, "IS Sites")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestDecodeWorkbookFallsBackToFirstSheet(t *testing.T) {
	r := buildWorkbook(t, "Sheet1", [][]any{
		{"PCode"},
		{"0001"},
	})

	rows, err := DecodeWorkbook(r, "No Such Sheet")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestDecodeWorkbookGarbage(t *testing.T) {
	_, err := DecodeWorkbook(bytes.NewReader([]byte("not a workbook")), "")
	require.Error(t, err)
}

func TestDecodeCellTagging(t *testing.T) {
	tests := []struct {
		raw  string
		kind sitedata.CellKind
	}{
		{"", sitedata.KindEmpty},
		{"  ", sitedata.KindEmpty},
		{"12.5", sitedata.KindNumber},
		{"TRUE", sitedata.KindBool},
		{"false", sitedata.KindBool},
		{"Akkar", sitedata.KindText},
		// ParseFloat accepts these spellings but they carry no usable
		// value; they must stay text, not become Number cells.
		{"nan", sitedata.KindText},
		{"NaN", sitedata.KindText},
		{"inf", sitedata.KindText},
		{"-Inf", sitedata.KindText},
	}
	for _, tt := range tests {
		if got := decodeCell(tt.raw).Kind(); got != tt.kind {
			t.Errorf("decodeCell(%q).Kind() = %v, want %v", tt.raw, got, tt.kind)
		}
	}
}
