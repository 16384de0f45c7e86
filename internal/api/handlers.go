package api

import (
	"net/http"
	"time"

	"github.com/reliefdata/sitewatch/internal/dashboard"
	"github.com/reliefdata/sitewatch/internal/export"
	"github.com/reliefdata/sitewatch/internal/fetch"
	"github.com/reliefdata/sitewatch/internal/pkg/httputil"
	"github.com/reliefdata/sitewatch/internal/pkg/logger"
	"github.com/reliefdata/sitewatch/internal/query"
	"github.com/reliefdata/sitewatch/internal/sitedata"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	service     *dashboard.Service
	source      *fetch.Source // nil when no remote origin is configured
	overlayPath string
	maxUpload   int64
}

// NewHandlers creates a Handlers instance.
func NewHandlers(service *dashboard.Service, source *fetch.Source, overlayPath string, maxUpload int64) *Handlers {
	return &Handlers{
		service:     service,
		source:      source,
		overlayPath: overlayPath,
		maxUpload:   maxUpload,
	}
}

// HealthCheck reports service liveness plus pipeline health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Pipeline.Snapshot()
	httputil.OK(w, map[string]any{
		"status":     "ok",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"hasData":    snap.HasData,
		"health":     snap.Health,
		"errorCount": snap.ErrorCount,
	})
}

// DashboardResponse bundles every derived view for one filter state so
// KPIs, charts, QC panel, and counts can never disagree.
type DashboardResponse struct {
	OK            bool                     `json:"ok"`
	Version       string                   `json:"version"`
	SourceName    string                   `json:"sourceName"`
	LoadedAt      time.Time                `json:"loadedAt"`
	Health        string                   `json:"health"`
	ErrorCount    int                      `json:"errorCount"`
	Criteria      string                   `json:"criteria"`
	TotalCount    int                      `json:"totalCount"`
	FilteredCount int                      `json:"filteredCount"`
	KPIs          dashboard.KPIs           `json:"kpis"`
	Charts        dashboard.Charts         `json:"charts"`
	QCPanel       []dashboard.QCPanelEntry `json:"qcPanel"`
	Options       dashboard.FilterOptions  `json:"options"`
}

// GetDashboard applies the criteria from the query string and returns
// all aggregate views over the resulting filtered set.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	snap := h.applyCriteria(r)
	httputil.OK(w, DashboardResponse{
		OK:            true,
		Version:       snap.Version,
		SourceName:    snap.SourceName,
		LoadedAt:      snap.LoadedAt,
		Health:        snap.Health,
		ErrorCount:    snap.ErrorCount,
		Criteria:      snap.Criteria.Encode(),
		TotalCount:    len(snap.Records),
		FilteredCount: len(snap.Filtered),
		KPIs:          dashboard.ComputeKPIs(snap.Filtered),
		Charts:        dashboard.ComputeCharts(snap.Filtered),
		QCPanel:       dashboard.ComputeQCPanel(snap.Filtered),
		Options:       dashboard.ComputeOptions(snap.Records),
	})
}

// GetRecords returns the filtered records for the table view.
func (h *Handlers) GetRecords(w http.ResponseWriter, r *http.Request) {
	snap := h.applyCriteria(r)
	rows := make([]map[string]any, len(snap.Filtered))
	for i, rec := range snap.Filtered {
		rows[i] = tableRow(rec)
	}
	httputil.OK(w, map[string]any{
		"ok":       true,
		"total":    len(snap.Records),
		"filtered": len(snap.Filtered),
		"records":  rows,
	})
}

// GetMap returns map markers for the filtered records joined with the
// coordinate index built from the full set.
func (h *Handlers) GetMap(w http.ResponseWriter, r *http.Request) {
	snap := h.applyCriteria(r)
	httputil.OK(w, dashboard.ComputeMapView(snap.Filtered, snap.Coords))
}

// ExportCSV streams one of the three CSV exports. All three share the
// export column list and quoting rules.
func (h *Handlers) ExportCSV(scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := h.applyCriteria(r)

		var records []*sitedata.Record
		switch scope {
		case "qc":
			records = export.QCOnly(snap.Filtered)
		case "filtered":
			records = snap.Filtered
		default:
			records = snap.Records
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=sites-"+scope+".csv")
		if err := export.WriteRecords(w, records); err != nil {
			// Headers and part of the body are already sent; a JSON
			// envelope here would corrupt the CSV. Log and abort.
			logger.Error("csv export failed", "scope", scope, "err", err)
		}
	}
}

// applyCriteria installs the request's filter criteria on the pipeline
// and returns the resulting snapshot in one atomic step. The URL query
// string is the only persistence for criteria, which keeps filter
// state shareable.
func (h *Handlers) applyCriteria(r *http.Request) dashboard.Snapshot {
	return h.service.Pipeline.SnapshotFor(query.FromValues(r.URL.Query()))
}

// tableRow renders one record for the table view: every export column
// plus the flag list with hints.
func tableRow(rec *sitedata.Record) map[string]any {
	row := make(map[string]any, len(export.Columns)+1)
	row["pcode"] = rec.PCode
	row["siteName"] = rec.SiteName
	row["district"] = rec.District
	row["cadaster"] = rec.Cadaster
	row["siteStatus"] = rec.SiteStatus
	row["phoneStatus"] = rec.PhoneStatus
	row["assessed"] = rec.Assessed
	row["qcAny"] = rec.QCAny
	row["qcIssueCount"] = rec.QCIssueCount
	row["qcFlags"] = rec.QCFlags
	numbers := make(map[string]float64, len(rec.Numbers))
	for col, v := range rec.Numbers {
		numbers[col] = v
	}
	row["numbers"] = numbers
	return row
}
