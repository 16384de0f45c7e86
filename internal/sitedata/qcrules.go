package sitedata

// QCRule describes one upstream quality-control check. The flags are
// computed in the source spreadsheet, not here; the engine only
// translates flag columns into labels and remediation text. Re-deriving
// the conditions locally would silently diverge from the sheet whenever
// its formulas change.
type QCRule struct {
	// Column is the boolean-ish flag column in the export.
	Column string
	// Label is the human-readable name shown in the QC panel and CSV.
	Label string
	// Hint tells enumerators how to fix the underlying data problem.
	Hint string
}

// QCRules is the fixed rule set. Order matters: QCFlags and the QC
// panel list rules in this order. Do not reorder or rename without a
// matching change in the source sheet's QC formulas.
var QCRules = []QCRule{
	{
		Column: "QC - Totals mismatch",
		Label:  "Totals mismatch",
		Hint:   "Men + women + children must equal total individuals.",
	},
	{
		Column: "QC - HH size outlier",
		Label:  "Household size outlier",
		Hint:   "Individuals per household is outside the plausible range; re-check both counts.",
	},
	{
		Column: "QC - Individuals below households",
		Label:  "Fewer individuals than households",
		Hint:   "Total individuals cannot be lower than the number of households.",
	},
	{
		Column: "QC - Zero households",
		Label:  "Zero households on active site",
		Hint:   "An active site must have at least one household, or its status should change.",
	},
	{
		Column: "QC - Tents exceed households",
		Label:  "More tents than households",
		Hint:   "Verify the tent count; vacated tents should be removed from the total.",
	},
	{
		Column: "QC - Children exceed individuals",
		Label:  "Children exceed total individuals",
		Hint:   "The children count is part of total individuals and cannot exceed it.",
	},
	{
		Column: "QC - Negative value",
		Label:  "Negative count",
		Hint:   "Population and shelter counts cannot be negative.",
	},
	{
		Column: "QC - Missing coordinates",
		Label:  "Missing coordinates",
		Hint:   "Capture latitude and longitude on the next site visit.",
	},
	{
		Column: "QC - Coordinates out of area",
		Label:  "Coordinates outside coverage area",
		Hint:   "The recorded point falls outside the country bounding box; re-capture it.",
	},
	{
		Column: "QC - Duplicate PCode",
		Label:  "Duplicate PCode",
		Hint:   "Two rows share this PCode; merge them or assign a new code.",
	},
	{
		Column: "QC - Missing site status",
		Label:  "Missing site status",
		Hint:   "Record the site status reported during the phone call.",
	},
	{
		Column: "QC - Missing district",
		Label:  "Missing district",
		Hint:   "Fill in the district from the cadaster lookup table.",
	},
	{
		Column: "QC - Missing cadaster",
		Label:  "Missing cadaster",
		Hint:   "Fill in the cadaster from the PCode registry.",
	},
	{
		Column: "QC - Stale assessment",
		Label:  "Assessment out of date",
		Hint:   "The last successful phone call is older than the reporting cycle; re-survey.",
	},
}

// EvalQCFlags returns the labels of every rule whose flag column
// coerces to true on the given row, in rule-definition order. Pure;
// the rule set is never mutated.
func EvalQCFlags(row RawRow, rules []QCRule) []string {
	var flags []string
	for _, rule := range rules {
		if row.Get(rule.Column).AsBool() {
			flags = append(flags, rule.Label)
		}
	}
	return flags
}

// HintFor returns the remediation hint for a rule label, or "" if the
// label is not part of the rule set.
func HintFor(label string) string {
	for _, rule := range QCRules {
		if rule.Label == label {
			return rule.Hint
		}
	}
	return ""
}
