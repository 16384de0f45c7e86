// Package export renders record sets as CSV. The column list and the
// quoting rules are shared by all three export actions (QC-only,
// currently filtered, full table) so the files line up in downstream
// spreadsheets.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/reliefdata/sitewatch/internal/sitedata"
)

// Columns is the fixed export column list, in output order.
var Columns = []string{
	sitedata.ColPCode,
	sitedata.ColSiteName,
	sitedata.ColDistrict,
	sitedata.ColCadaster,
	sitedata.ColSiteStatus,
	sitedata.ColPhoneStatus,
	sitedata.ColHouseholds,
	sitedata.ColIndividuals,
	sitedata.ColMen,
	sitedata.ColWomen,
	sitedata.ColChildren,
	sitedata.ColTents,
	sitedata.ColQCAny,
	sitedata.ColQCCount,
	"QC Flags",
}

// WriteRecords streams the records as CSV. encoding/csv applies
// RFC 4180 quoting: fields containing quotes, commas, or newlines are
// quoted and internal quotes doubled.
func WriteRecords(w io.Writer, records []*sitedata.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	row := make([]string, len(Columns))
	for _, rec := range records {
		for i, col := range Columns {
			row[i] = fieldValue(rec, col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// QCOnly returns the subsequence of records carrying any QC issue.
func QCOnly(records []*sitedata.Record) []*sitedata.Record {
	out := make([]*sitedata.Record, 0, len(records))
	for _, rec := range records {
		if rec.QCAny == "Yes" {
			out = append(out, rec)
		}
	}
	return out
}

// fieldValue renders one export cell from the normalized record, so
// exports show the same derived statuses and sentinels as the table.
func fieldValue(rec *sitedata.Record, col string) string {
	switch col {
	case sitedata.ColPCode:
		return rec.PCode
	case sitedata.ColSiteName:
		return rec.SiteName
	case sitedata.ColDistrict:
		return rec.District
	case sitedata.ColCadaster:
		return rec.Cadaster
	case sitedata.ColSiteStatus:
		return rec.SiteStatus
	case sitedata.ColPhoneStatus:
		return rec.PhoneStatus
	case sitedata.ColQCAny:
		return rec.QCAny
	case "QC Flags":
		return strings.Join(rec.QCFlags, "; ")
	}
	if v, ok := rec.Numbers[col]; ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return rec.Raw.Get(col).AsText()
}
