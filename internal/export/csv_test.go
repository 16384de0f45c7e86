package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/reliefdata/sitewatch/internal/sitedata"
)

func TestWriteRecordsQuoting(t *testing.T) {
	records := sitedata.NormalizeAll([]sitedata.RawRow{
		{
			sitedata.ColPCode:    sitedata.Text("0001-01-001"),
			sitedata.ColSiteName: sitedata.Text(`He said, "hi"`),
		},
	})

	var buf bytes.Buffer
	if err := WriteRecords(&buf, records); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"He said, ""hi"""`) {
		t.Errorf("field not quoted per RFC 4180:\n%s", out)
	}

	// Round trip through a standard CSV parser.
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	nameIdx := -1
	for i, col := range rows[0] {
		if col == sitedata.ColSiteName {
			nameIdx = i
		}
	}
	if nameIdx < 0 {
		t.Fatal("site name column missing from header")
	}
	if rows[1][nameIdx] != `He said, "hi"` {
		t.Errorf("round trip = %q", rows[1][nameIdx])
	}
}

func TestWriteRecordsColumnsStable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecords(&buf, nil); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != len(Columns) {
		t.Fatalf("header = %v", rows)
	}
	for i, col := range Columns {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
}

func TestQCOnly(t *testing.T) {
	records := sitedata.NormalizeAll([]sitedata.RawRow{
		{sitedata.ColPCode: sitedata.Text("A"), sitedata.ColQCAny: sitedata.Text("Yes")},
		{sitedata.ColPCode: sitedata.Text("B")},
		{sitedata.ColPCode: sitedata.Text("C"), sitedata.ColQCAny: sitedata.Bool(true)},
	})
	got := QCOnly(records)
	if len(got) != 2 || got[0].PCode != "A" || got[1].PCode != "C" {
		t.Errorf("QCOnly returned %d records", len(got))
	}
}

func TestFieldValueDerivedStatuses(t *testing.T) {
	rec := sitedata.Normalize(sitedata.RawRow{
		sitedata.ColPCode:      sitedata.Text("0001"),
		sitedata.ColHouseholds: sitedata.Number(12),
		"QC - Totals mismatch": sitedata.Text("Yes"),
	})
	if v := fieldValue(rec, sitedata.ColSiteStatus); v != sitedata.StatusNotAssessed {
		t.Errorf("site status cell = %q", v)
	}
	if v := fieldValue(rec, sitedata.ColHouseholds); v != "12" {
		t.Errorf("households cell = %q", v)
	}
	if v := fieldValue(rec, "QC Flags"); v != "Totals mismatch" {
		t.Errorf("flags cell = %q", v)
	}
	if v := fieldValue(rec, sitedata.ColDistrict); v != sitedata.Unknown {
		t.Errorf("district cell = %q", v)
	}
}
