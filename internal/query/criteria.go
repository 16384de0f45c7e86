// Package query implements the filter predicate, the aggregation
// helpers every view consumes, and the shareable URL encoding of
// filter criteria.
package query

import (
	"net/url"
	"strings"
)

// All is the wildcard value for each discrete selector.
const All = "All"

// QC selector values.
const (
	QCAll      = "All"
	QCAnyIssue = "Any issue"
	QCNoIssues = "No issues"
)

// Criteria is the user-selected filter state. It is a value object:
// handlers decode it from the query string per request and the
// dashboard persists it into shareable URLs, never server-side.
type Criteria struct {
	Q           string
	District    string
	Cadaster    string
	SiteStatus  string
	PhoneStatus string
	QC          string
}

// Default returns the pass-everything criteria.
func Default() Criteria {
	return Criteria{
		District:    All,
		Cadaster:    All,
		SiteStatus:  All,
		PhoneStatus: All,
		QC:          QCAll,
	}
}

// IsDefault reports whether the criteria filter nothing.
func (c Criteria) IsDefault() bool {
	return c == Default()
}

// Values encodes the criteria as URL query parameters. Wildcard and
// empty values are omitted so shared links stay short.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	if q := strings.TrimSpace(c.Q); q != "" {
		v.Set("q", q)
	}
	setNonAll(v, "district", c.District)
	setNonAll(v, "cadaster", c.Cadaster)
	setNonAll(v, "siteStatus", c.SiteStatus)
	setNonAll(v, "phoneStatus", c.PhoneStatus)
	setNonAll(v, "qc", c.QC)
	return v
}

// Encode renders the criteria as a query string.
func (c Criteria) Encode() string {
	return c.Values().Encode()
}

// FromValues decodes criteria from URL query parameters. Absent keys
// fall back to the defaults and Q is trimmed on both encode and
// decode, so Decode(Encode(c)) == c for every decoded c.
func FromValues(v url.Values) Criteria {
	c := Default()
	c.Q = strings.TrimSpace(v.Get("q"))
	getNonEmpty(v, "district", &c.District)
	getNonEmpty(v, "cadaster", &c.Cadaster)
	getNonEmpty(v, "siteStatus", &c.SiteStatus)
	getNonEmpty(v, "phoneStatus", &c.PhoneStatus)
	getNonEmpty(v, "qc", &c.QC)
	return c
}

// Decode parses a raw query string. Malformed input degrades to the
// default criteria rather than failing.
func Decode(qs string) Criteria {
	v, err := url.ParseQuery(qs)
	if err != nil {
		return Default()
	}
	return FromValues(v)
}

func setNonAll(v url.Values, key, val string) {
	if val != "" && val != All {
		v.Set(key, val)
	}
}

func getNonEmpty(v url.Values, key string, dst *string) {
	if val := v.Get(key); val != "" {
		*dst = val
	}
}
