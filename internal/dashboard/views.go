package dashboard

import (
	"sort"

	"github.com/reliefdata/sitewatch/internal/geo"
	"github.com/reliefdata/sitewatch/internal/query"
	"github.com/reliefdata/sitewatch/internal/sitedata"
)

// KPIs are the headline figures over the filtered set.
type KPIs struct {
	TotalSites    int     `json:"totalSites"`
	AssessedCount int     `json:"assessedCount"`
	AssessedPct   float64 `json:"assessedPct"`
	AnyIssueCount int     `json:"anyIssueCount"`
	Households    float64 `json:"households"`
	Individuals   float64 `json:"individuals"`
	Men           float64 `json:"men"`
	Women         float64 `json:"women"`
	Children      float64 `json:"children"`
}

// ComputeKPIs derives the headline figures from a record set.
func ComputeKPIs(records []*sitedata.Record) KPIs {
	k := KPIs{TotalSites: len(records)}
	for _, rec := range records {
		if rec.Assessed {
			k.AssessedCount++
		}
		if rec.QCAny == "Yes" {
			k.AnyIssueCount++
		}
		k.Households += rec.Numbers[sitedata.ColHouseholds]
		k.Individuals += rec.Numbers[sitedata.ColIndividuals]
		k.Men += rec.Numbers[sitedata.ColMen]
		k.Women += rec.Numbers[sitedata.ColWomen]
		k.Children += rec.Numbers[sitedata.ColChildren]
	}
	if k.TotalSites > 0 {
		k.AssessedPct = 100 * float64(k.AssessedCount) / float64(k.TotalSites)
	}
	return k
}

// Charts are the grouped series behind each chart widget.
type Charts struct {
	ByDistrict           map[string]int     `json:"byDistrict"`
	BySiteStatus         map[string]int     `json:"bySiteStatus"`
	ByPhoneStatus        map[string]int     `json:"byPhoneStatus"`
	HouseholdsByDistrict map[string]float64 `json:"householdsByDistrict"`
}

// ComputeCharts derives every chart series from one record set so the
// charts always agree with the KPIs and table on a filter change.
func ComputeCharts(records []*sitedata.Record) Charts {
	return Charts{
		ByDistrict: query.CountBy(records, func(r *sitedata.Record) string {
			return r.District
		}),
		BySiteStatus: query.CountBy(records, func(r *sitedata.Record) string {
			return r.SiteStatus
		}),
		ByPhoneStatus: query.CountBy(records, func(r *sitedata.Record) string {
			return r.PhoneStatus
		}),
		HouseholdsByDistrict: query.GroupSum(records,
			func(r *sitedata.Record) string { return r.District },
			func(r *sitedata.Record) float64 { return r.Numbers[sitedata.ColHouseholds] }),
	}
}

// QCPanelEntry is one rule row in the QC panel.
type QCPanelEntry struct {
	Label string `json:"label"`
	Hint  string `json:"hint"`
	Count int    `json:"count"`
}

// ComputeQCPanel counts flag hits per rule over the record set, in
// rule-definition order. Rules with zero hits are included so the
// panel layout is stable.
func ComputeQCPanel(records []*sitedata.Record) []QCPanelEntry {
	hits := make(map[string]int)
	for _, rec := range records {
		for _, label := range rec.QCFlags {
			hits[label]++
		}
	}
	entries := make([]QCPanelEntry, len(sitedata.QCRules))
	for i, rule := range sitedata.QCRules {
		entries[i] = QCPanelEntry{
			Label: rule.Label,
			Hint:  rule.Hint,
			Count: hits[rule.Label],
		}
	}
	return entries
}

// FilterOptions are the distinct selector values offered by the UI,
// always derived from the full set so options do not vanish while
// filtered.
type FilterOptions struct {
	Districts     []string `json:"districts"`
	Cadasters     []string `json:"cadasters"`
	SiteStatuses  []string `json:"siteStatuses"`
	PhoneStatuses []string `json:"phoneStatuses"`
}

// ComputeOptions collects distinct sorted selector values.
func ComputeOptions(records []*sitedata.Record) FilterOptions {
	return FilterOptions{
		Districts:     distinct(records, func(r *sitedata.Record) string { return r.District }),
		Cadasters:     distinct(records, func(r *sitedata.Record) string { return r.Cadaster }),
		SiteStatuses:  distinct(records, func(r *sitedata.Record) string { return r.SiteStatus }),
		PhoneStatuses: distinct(records, func(r *sitedata.Record) string { return r.PhoneStatus }),
	}
}

func distinct(records []*sitedata.Record, keyFn func(*sitedata.Record) string) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		if v := keyFn(rec); v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Marker is one mappable filtered record joined with the coordinate
// index.
type Marker struct {
	PCode      string  `json:"pcode"`
	SiteName   string  `json:"siteName"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	SiteStatus string  `json:"siteStatus"`
	QCAny      string  `json:"qcAny"`
	Households float64 `json:"households"`
}

// MapView is the map payload: markers for the filtered records with
// known coordinates, plus the index metadata the legend shows.
type MapView struct {
	Markers       []Marker `json:"markers"`
	NoCoordinates bool     `json:"noCoordinates"`
	LatColumn     string   `json:"latColumn,omitempty"`
	LngColumn     string   `json:"lngColumn,omitempty"`
	Mapped        int      `json:"mapped"`
	Total         int      `json:"total"`
}

// ComputeMapView joins the filtered records against the coordinate
// index. Filters decide which markers are displayed; the index itself
// always comes from the full set.
func ComputeMapView(filtered []*sitedata.Record, coords *geo.Index) MapView {
	view := MapView{
		Markers:       []Marker{},
		NoCoordinates: !coords.Resolved(),
		LatColumn:     coords.LatColumn,
		LngColumn:     coords.LngColumn,
		Mapped:        coords.Mapped,
		Total:         coords.Total,
	}
	if view.NoCoordinates {
		return view
	}
	for _, rec := range filtered {
		pt, ok := coords.Points[rec.PCode]
		if !ok {
			continue
		}
		view.Markers = append(view.Markers, Marker{
			PCode:      rec.PCode,
			SiteName:   rec.SiteName,
			Lat:        pt.Lat,
			Lng:        pt.Lng,
			SiteStatus: rec.SiteStatus,
			QCAny:      rec.QCAny,
			Households: rec.Numbers[sitedata.ColHouseholds],
		})
	}
	return view
}
