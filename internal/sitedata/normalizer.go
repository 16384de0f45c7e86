package sitedata

import "strings"

// searchColumns feed the lowercase search blob used for free-text
// filtering: identifier, name, and location fields.
var searchColumns = []string{
	ColPCode,
	ColSiteName,
	ColDistrict,
	ColCadaster,
}

// Normalize converts one raw row into a Record. Every input maps to a
// defined output: malformed numbers become 0, blank statuses become
// sentinels, and no error path exists. Normalizing the same row twice
// yields identical records.
func Normalize(row RawRow) *Record {
	rec := &Record{
		Raw:     row,
		Numbers: make(map[string]float64, len(NumericColumns)),
	}

	for _, col := range NumericColumns {
		rec.Numbers[col] = row.Get(col).AsNumber()
	}

	rec.PCode = row.Get(ColPCode).AsText()
	rec.SiteName = row.Get(ColSiteName).AsText()

	phone := row.Get(ColPhoneStatus).AsText()
	rec.Assessed = phone != ""

	// Site status precedence: explicit value, then "Not recorded" for
	// assessed sites with a blank status, then "Not assessed".
	status := row.Get(ColSiteStatus).AsText()
	switch {
	case status != "":
		rec.SiteStatus = status
	case rec.Assessed:
		rec.SiteStatus = StatusNotRecorded
	default:
		rec.SiteStatus = StatusNotAssessed
	}

	rec.District = defaulted(row.Get(ColDistrict).AsText())
	rec.Cadaster = defaulted(row.Get(ColCadaster).AsText())

	if rec.Assessed {
		rec.PhoneStatus = phone
	} else {
		rec.PhoneStatus = StatusNotAssessed
	}

	if row.Get(ColQCAny).AsBool() {
		rec.QCAny = "Yes"
	} else {
		rec.QCAny = "No"
	}
	rec.QCIssueCount = rec.Numbers[ColQCCount]
	rec.QCFlags = EvalQCFlags(row, QCRules)

	parts := make([]string, 0, len(searchColumns))
	for _, col := range searchColumns {
		if v := row.Get(col).AsText(); v != "" {
			parts = append(parts, strings.ToLower(v))
		}
	}
	rec.SearchBlob = strings.Join(parts, " ")

	return rec
}

// NormalizeAll maps a full raw row set, preserving order.
func NormalizeAll(rows []RawRow) []*Record {
	records := make([]*Record, len(rows))
	for i, row := range rows {
		records[i] = Normalize(row)
	}
	return records
}

func defaulted(v string) string {
	if v == "" {
		return Unknown
	}
	return v
}
