package sitedata

// RawRow is one decoded spreadsheet row keyed by header name. Rows are
// not guaranteed to share a column set; a missing column reads as the
// zero Cell.
type RawRow map[string]Cell

// Get returns the cell for the given column, or the empty cell if the
// column is absent from this row.
func (r RawRow) Get(column string) Cell {
	return r[column]
}

// Canonical column names used by the normalizer. Exports rename freely
// around these, but the IA master sheet has kept this core set stable.
const (
	ColPCode       = "PCode"
	ColSiteName    = "Site Name"
	ColDistrict    = "District"
	ColCadaster    = "Cadaster"
	ColSiteStatus  = "Site Status"
	ColPhoneStatus = "Phone call status"
	ColQCAny       = "QC - Any issue"
	ColQCCount     = "QC - Number of issues"

	ColHouseholds  = "Total number of Households"
	ColIndividuals = "Total number of Individuals"
	ColMen         = "Number of Men"
	ColWomen       = "Number of Women"
	ColChildren    = "Number of Children"
	ColTents       = "Number of Tents"
)

// NumericColumns is the fixed list of columns coerced to numbers on
// every record. Invalid or blank values coerce to 0.
var NumericColumns = []string{
	ColHouseholds,
	ColIndividuals,
	ColMen,
	ColWomen,
	ColChildren,
	ColTents,
	ColQCCount,
}

// Unknown is the sentinel shown for blank district/cadaster values and
// used as the default aggregation key.
const Unknown = "—"

// Derived status values.
const (
	StatusNotAssessed = "Not assessed"
	StatusNotRecorded = "Not recorded"
)

// Record is the fully normalized output of one raw row. Every field is
// defined for every input; malformed cells degrade to zero values and
// sentinels rather than errors.
type Record struct {
	// Raw keeps all original column values for the table view and
	// CSV export.
	Raw RawRow

	// Numbers holds the coerced value of every NumericColumns entry.
	Numbers map[string]float64

	PCode        string
	SiteName     string
	Assessed     bool
	SiteStatus   string
	District     string
	Cadaster     string
	PhoneStatus  string
	QCAny        string // "Yes" or "No"
	QCIssueCount float64
	// QCFlags holds the labels of every QC rule that evaluated true,
	// in rule-definition order. Its length is sourced independently of
	// QCIssueCount and the two may disagree; the QC panel shows both.
	QCFlags    []string
	SearchBlob string
}

// Households is a convenience accessor for the most-aggregated KPI.
func (r *Record) Households() float64 {
	return r.Numbers[ColHouseholds]
}
