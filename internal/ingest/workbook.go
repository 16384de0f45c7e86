// Package ingest decodes xlsx workbooks into raw rows for the
// normalization pipeline. The spreadsheet format itself is an external
// collaborator (excelize); this package only shapes its output.
package ingest

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/reliefdata/sitewatch/internal/sitedata"
)

// DecodeWorkbook reads an xlsx stream and returns one RawRow per data
// row, keyed by the header row. The worksheet named sheetName is
// preferred; when absent (or sheetName is empty) the first sheet is
// used. Blank cells are omitted from the row and read back as the
// empty cell.
func DecodeWorkbook(r io.Reader, sheetName string) ([]sitedata.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := pickSheet(f, sheetName)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	headers := headerNames(rows[0])
	out := make([]sitedata.RawRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(sitedata.RawRow, len(headers))
		for i, raw := range cells {
			if i >= len(headers) {
				break
			}
			cell := decodeCell(raw)
			if cell.IsEmpty() {
				continue
			}
			row[headers[i]] = cell
		}
		out = append(out, row)
	}
	return out, nil
}

// pickSheet returns the preferred worksheet name, falling back to the
// first sheet when the named one does not exist.
func pickSheet(f *excelize.File, preferred string) string {
	if preferred != "" {
		for _, name := range f.GetSheetList() {
			if name == preferred {
				return name
			}
		}
	}
	return f.GetSheetName(0)
}

// headerNames trims the header row and fills in placeholder names for
// blank headers so no column is silently dropped.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		names[i] = h
	}
	return names
}

// decodeCell tags one cell value. excelize hands back formatted
// strings, so numeric and boolean shapes are re-detected here and the
// rest stays text. ParseFloat accepts "nan" and "inf" spellings, which
// exported sheets do contain; those stay text so downstream parsers
// reject them instead of reading a coerced 0.
func decodeCell(raw string) sitedata.Cell {
	v := strings.TrimSpace(raw)
	if v == "" {
		return sitedata.Empty
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return sitedata.Number(n)
	}
	switch strings.ToLower(v) {
	case "true":
		return sitedata.Bool(true)
	case "false":
		return sitedata.Bool(false)
	}
	return sitedata.Text(v)
}
