package query

import (
	"net/url"
	"testing"
)

func TestCriteriaRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
	}{
		{"defaults", Default()},
		{
			"fully populated",
			Criteria{
				Q:           "amal camp",
				District:    "Akkar",
				Cadaster:    "Bebnine",
				SiteStatus:  "Active",
				PhoneStatus: "Answer",
				QC:          QCAnyIssue,
			},
		},
		{
			"reserved characters in query",
			Criteria{
				Q:           "a&b=c? d%20+#e",
				District:    All,
				Cadaster:    All,
				SiteStatus:  All,
				PhoneStatus: All,
				QC:          QCAll,
			},
		},
		{
			"no issues selector",
			Criteria{
				District:    All,
				Cadaster:    All,
				SiteStatus:  "Not assessed",
				PhoneStatus: All,
				QC:          QCNoIssues,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.c.Encode())
			if got != tt.c {
				t.Errorf("round trip:\n got %+v\nwant %+v", got, tt.c)
			}
		})
	}
}

func TestQNormalizedOnBothSides(t *testing.T) {
	// Whitespace-only and padded Q must round-trip: Encode drops or
	// trims it, and FromValues trims on decode, so both sides agree.
	blank := Default()
	blank.Q = "   "
	if got := Decode(blank.Encode()); got != Default() {
		t.Errorf("whitespace Q round trip: %+v", got)
	}

	padded := Default()
	padded.Q = "  amal camp  "
	got := Decode(padded.Encode())
	if got.Q != "amal camp" {
		t.Errorf("padded Q = %q, want trimmed", got.Q)
	}
	if Decode(got.Encode()) != got {
		t.Errorf("decoded criteria must be a round-trip fixed point: %+v", got)
	}

	v := url.Values{}
	v.Set("q", "  shatila  ")
	if c := FromValues(v); c.Q != "shatila" {
		t.Errorf("FromValues Q = %q, want trimmed", c.Q)
	}
}

func TestEncodeOmitsWildcards(t *testing.T) {
	if qs := Default().Encode(); qs != "" {
		t.Errorf("default criteria should encode empty, got %q", qs)
	}
}

func TestFromValuesPartial(t *testing.T) {
	v := url.Values{}
	v.Set("district", "Zahle")
	c := FromValues(v)
	if c.District != "Zahle" {
		t.Errorf("District = %q", c.District)
	}
	if c.Cadaster != All || c.QC != QCAll || c.Q != "" {
		t.Errorf("absent keys should default: %+v", c)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if c := Decode("%zz=broken"); c != Default() {
		t.Errorf("malformed query should yield defaults, got %+v", c)
	}
}
