package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefdata/sitewatch/internal/dashboard"
	"github.com/reliefdata/sitewatch/internal/sitedata"
)

func testHandlers(t *testing.T) *Handlers {
	t.Helper()

	pipeline := dashboard.New()
	ticket := pipeline.BeginLoad()
	ok := pipeline.CompleteLoad(ticket, []sitedata.RawRow{
		{
			sitedata.ColPCode:       sitedata.Text("0001-01-001"),
			sitedata.ColDistrict:    sitedata.Text("Akkar"),
			sitedata.ColSiteStatus:  sitedata.Text("Active"),
			sitedata.ColPhoneStatus: sitedata.Text("Answer"),
			sitedata.ColHouseholds:  sitedata.Number(10),
			"Latitude":              sitedata.Number(33.5),
			"Longitude":             sitedata.Number(35.5),
		},
		{
			sitedata.ColPCode:      sitedata.Text("0002-01-002"),
			sitedata.ColDistrict:   sitedata.Text("Zahle"),
			"QC - Totals mismatch": sitedata.Text("Yes"),
			sitedata.ColQCAny:      sitedata.Text("Yes"),
		},
	}, "fixture")
	require.True(t, ok)

	service := dashboard.NewService(pipeline, nil, 0)
	return NewHandlers(service, nil, "", 1<<20)
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(SetupRoutes(testHandlers(t), nil))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, dst any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	return resp
}

func TestHealthCheck(t *testing.T) {
	srv := testServer(t)

	var body map[string]any
	resp := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["hasData"])
}

func TestGetDashboard(t *testing.T) {
	srv := testServer(t)

	var body DashboardResponse
	resp := getJSON(t, srv.URL+"/api/dashboard", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.OK)
	assert.Equal(t, 2, body.TotalCount)
	assert.Equal(t, 2, body.FilteredCount)
	assert.Equal(t, 1, body.KPIs.AssessedCount)
	assert.Equal(t, 50.0, body.KPIs.AssessedPct)
	assert.Equal(t, 1, body.Charts.ByDistrict["Akkar"])
	assert.ElementsMatch(t, []string{"Akkar", "Zahle"}, body.Options.Districts)
}

func TestGetDashboardFiltered(t *testing.T) {
	srv := testServer(t)

	var body DashboardResponse
	getJSON(t, srv.URL+"/api/dashboard?district=Akkar", &body)
	assert.Equal(t, 2, body.TotalCount)
	assert.Equal(t, 1, body.FilteredCount)
	assert.Equal(t, "district=Akkar", body.Criteria)
	// Options always come from the full set.
	assert.ElementsMatch(t, []string{"Akkar", "Zahle"}, body.Options.Districts)
}

func TestGetMap(t *testing.T) {
	srv := testServer(t)

	var view dashboard.MapView
	getJSON(t, srv.URL+"/api/map", &view)
	assert.False(t, view.NoCoordinates)
	require.Len(t, view.Markers, 1)
	assert.Equal(t, "0001-01-001", view.Markers[0].PCode)
}

func TestExportFilteredCSV(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/export/qc.csv?qc=" + "Any+issue")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "0002-01-002")
	assert.NotContains(t, body, "0001-01-001")
}

// brokenWriter rejects every body write, as when the client hangs up
// mid-download.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (b *brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("client went away")
}

func TestExportCSVWriteFailureLeavesResponseClean(t *testing.T) {
	h := testHandlers(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/all.csv", nil)

	h.ExportCSV("all")(&brokenWriter{rec}, req)

	// The CSV headers are already committed; no error envelope or
	// second status may follow the failed write.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"ok"`)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
}

func TestMethodNotAllowedIsJSON(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/api/dashboard", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
}

func TestSourceMetaUnconfigured(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/source/meta")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["ok"])
}

func TestOverlayUnconfigured(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/overlay")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
