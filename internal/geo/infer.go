// Package geo locates latitude/longitude columns in arbitrary
// spreadsheet exports and builds the PCode → point index used by the
// map view. Exports are user-maintained and headers get renamed or
// localized, so detection combines name patterns with statistical band
// scoring instead of trusting fixed column names.
package geo

import (
	"regexp"
	"sort"
	"strings"

	"github.com/reliefdata/sitewatch/internal/sitedata"
)

// Geographic bands and confidence thresholds. A column scored by the
// fraction of its parsed samples falling inside the band: a
// name-matched column is trusted at NameMatchThreshold, an anonymous
// column must clear the higher BandScoreThreshold so unrelated numeric
// columns that graze the band are rejected.
const (
	LatMin = 32.0
	LatMax = 35.9
	LngMin = 34.0
	LngMax = 37.9

	NameMatchThreshold = 0.25
	BandScoreThreshold = 0.65

	// SampleLimit caps rows scanned per column during scoring.
	SampleLimit = 1200
)

// Point is one resolved site position.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Index maps trimmed PCodes to points, with metadata about how the
// columns were resolved. Built once per data load from the full record
// set; filters never change which coordinates are known.
type Index struct {
	Points    map[string]Point `json:"points"`
	LatColumn string           `json:"latColumn"`
	LngColumn string           `json:"lngColumn"`
	Mapped    int              `json:"mapped"`
	Total     int              `json:"total"`
}

// Resolved reports whether both axes were identified.
func (idx *Index) Resolved() bool {
	return idx.LatColumn != "" && idx.LngColumn != ""
}

var pcodePattern = regexp.MustCompile(`(?i)^p\s*code$`)

// findPCodeColumn picks the site-identifier column: exact
// case-insensitive "pcode", then the fuzzy whitespace pattern
// ("p code"), then the canonical literal.
func findPCodeColumn(columns []string) string {
	for _, c := range columns {
		if strings.EqualFold(strings.TrimSpace(c), "pcode") {
			return c
		}
	}
	for _, c := range columns {
		if pcodePattern.MatchString(strings.TrimSpace(c)) {
			return c
		}
	}
	return sitedata.ColPCode
}

func looksLikeLat(name string) bool {
	n := strings.ToLower(name)
	if strings.Contains(n, "latrine") {
		return false
	}
	return strings.Contains(n, "lat")
}

func looksLikeLng(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "lon") || strings.Contains(n, "lng")
}

// bandScore samples up to SampleLimit rows of one column and returns
// the fraction of successfully parsed values inside [min, max].
// Columns with no parseable values score 0.
func bandScore(records []*sitedata.Record, column string, min, max float64) float64 {
	limit := len(records)
	if limit > SampleLimit {
		limit = SampleLimit
	}
	parsed, hits := 0, 0
	for i := 0; i < limit; i++ {
		v, ok := ParseCoordinate(records[i].Raw.Get(column))
		if !ok {
			continue
		}
		parsed++
		if v >= min && v <= max {
			hits++
		}
	}
	if parsed == 0 {
		return 0
	}
	return float64(hits) / float64(parsed)
}

// selectColumn resolves one axis. Name-matched candidates win at the
// low threshold because an explicitly named column is trustworthy even
// with a modest valid-sample fraction; otherwise the best-scoring
// column overall must clear the high threshold.
func selectColumn(records []*sitedata.Record, columns []string, nameMatch func(string) bool, min, max float64, exclude string) (string, bool) {
	bestNamed, bestNamedScore := "", -1.0
	bestAny, bestAnyScore := "", -1.0

	for _, col := range columns {
		if col == exclude {
			continue
		}
		score := bandScore(records, col, min, max)
		if nameMatch(col) && score > bestNamedScore {
			bestNamed, bestNamedScore = col, score
		}
		if score > bestAnyScore {
			bestAny, bestAnyScore = col, score
		}
	}

	if bestNamed != "" && bestNamedScore >= NameMatchThreshold {
		return bestNamed, true
	}
	if bestAny != "" && bestAnyScore >= BandScoreThreshold {
		return bestAny, true
	}
	return "", false
}

// columnUniverse collects every column name present in the sampled
// rows, sorted so selection ties break deterministically.
func columnUniverse(records []*sitedata.Record) []string {
	limit := len(records)
	if limit > SampleLimit {
		limit = SampleLimit
	}
	seen := make(map[string]struct{})
	for i := 0; i < limit; i++ {
		for col := range records[i].Raw {
			seen[col] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for col := range seen {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

// BuildIndex runs column inference over the full normalized record set
// and returns the PCode → point index. When either axis cannot be
// resolved the index is returned empty rather than guessed.
func BuildIndex(records []*sitedata.Record) *Index {
	idx := &Index{
		Points: make(map[string]Point),
		Total:  len(records),
	}
	if len(records) == 0 {
		return idx
	}

	columns := columnUniverse(records)
	pcodeCol := findPCodeColumn(columns)

	latCol, ok := selectColumn(records, columns, looksLikeLat, LatMin, LatMax, "")
	if !ok {
		return idx
	}
	lngCol, ok := selectColumn(records, columns, looksLikeLng, LngMin, LngMax, latCol)
	if !ok {
		return idx
	}
	idx.LatColumn = latCol
	idx.LngColumn = lngCol

	// Later duplicate PCodes overwrite earlier ones.
	for _, rec := range records {
		id := strings.TrimSpace(rec.Raw.Get(pcodeCol).AsText())
		if id == "" {
			continue
		}
		lat, okLat := ParseCoordinate(rec.Raw.Get(latCol))
		lng, okLng := ParseCoordinate(rec.Raw.Get(lngCol))
		if okLat && okLng {
			idx.Points[id] = Point{Lat: lat, Lng: lng}
		}
	}
	idx.Mapped = len(idx.Points)
	return idx
}
