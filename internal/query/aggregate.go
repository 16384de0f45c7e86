package query

import "github.com/reliefdata/sitewatch/internal/sitedata"

// CountBy groups records by keyFn and counts each group. Records whose
// key comes back empty are counted under the "—" sentinel. Input is
// never mutated; an empty input yields an empty map.
func CountBy(records []*sitedata.Record, keyFn func(*sitedata.Record) string) map[string]int {
	out := make(map[string]int)
	for _, rec := range records {
		out[keyOrDefault(keyFn(rec))]++
	}
	return out
}

// GroupSum groups records by keyFn and sums valueFn per group, with
// the same default-key rule as CountBy.
func GroupSum(records []*sitedata.Record, keyFn func(*sitedata.Record) string, valueFn func(*sitedata.Record) float64) map[string]float64 {
	out := make(map[string]float64)
	for _, rec := range records {
		out[keyOrDefault(keyFn(rec))] += valueFn(rec)
	}
	return out
}

func keyOrDefault(key string) string {
	if key == "" {
		return sitedata.Unknown
	}
	return key
}
