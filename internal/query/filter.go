package query

import (
	"strings"

	"github.com/reliefdata/sitewatch/internal/sitedata"
)

// Apply returns the records passing the criteria, as an
// order-preserving subsequence of the input. All conditions are
// AND-combined; the free-text condition is plain substring containment
// against the record's search blob, nothing fuzzier.
func Apply(records []*sitedata.Record, c Criteria) []*sitedata.Record {
	q := strings.ToLower(strings.TrimSpace(c.Q))

	out := make([]*sitedata.Record, 0, len(records))
	for _, rec := range records {
		if !matchSelector(c.District, rec.District) {
			continue
		}
		if !matchSelector(c.Cadaster, rec.Cadaster) {
			continue
		}
		if !matchSelector(c.SiteStatus, rec.SiteStatus) {
			continue
		}
		if !matchSelector(c.PhoneStatus, rec.PhoneStatus) {
			continue
		}
		if !matchQC(c.QC, rec.QCAny) {
			continue
		}
		if q != "" && !strings.Contains(rec.SearchBlob, q) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchSelector(criterion, value string) bool {
	return criterion == "" || criterion == All || criterion == value
}

func matchQC(criterion, qcAny string) bool {
	switch criterion {
	case QCAnyIssue:
		return qcAny == "Yes"
	case QCNoIssues:
		return qcAny == "No"
	default:
		return true
	}
}
