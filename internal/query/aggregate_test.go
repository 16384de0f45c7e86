package query

import (
	"testing"

	"github.com/reliefdata/sitewatch/internal/sitedata"
)

func district(r *sitedata.Record) string { return r.District }

func TestCountByEmpty(t *testing.T) {
	got := CountBy(nil, district)
	if len(got) != 0 {
		t.Errorf("empty input should yield empty map, got %v", got)
	}
}

func TestCountBySingle(t *testing.T) {
	records := sitedata.NormalizeAll([]sitedata.RawRow{
		{sitedata.ColDistrict: sitedata.Text("Akkar")},
	})
	got := CountBy(records, district)
	if len(got) != 1 || got["Akkar"] != 1 {
		t.Errorf("CountBy = %v", got)
	}
}

func TestCountByDefaultKey(t *testing.T) {
	records := sitedata.NormalizeAll([]sitedata.RawRow{{}})
	got := CountBy(records, func(r *sitedata.Record) string { return "" })
	if got[sitedata.Unknown] != 1 {
		t.Errorf("falsy key should land under %q, got %v", sitedata.Unknown, got)
	}
}

func TestGroupSum(t *testing.T) {
	records := sitedata.NormalizeAll([]sitedata.RawRow{
		{sitedata.ColDistrict: sitedata.Text("Akkar"), sitedata.ColHouseholds: sitedata.Number(10)},
		{sitedata.ColDistrict: sitedata.Text("Akkar"), sitedata.ColHouseholds: sitedata.Number(5)},
		{sitedata.ColDistrict: sitedata.Text("Zahle"), sitedata.ColHouseholds: sitedata.Number(3)},
	})
	got := GroupSum(records, district, func(r *sitedata.Record) float64 {
		return r.Numbers[sitedata.ColHouseholds]
	})
	if got["Akkar"] != 15 || got["Zahle"] != 3 {
		t.Errorf("GroupSum = %v", got)
	}
}

func TestGroupSumDoesNotMutate(t *testing.T) {
	records := sitedata.NormalizeAll([]sitedata.RawRow{
		{sitedata.ColDistrict: sitedata.Text("Akkar"), sitedata.ColHouseholds: sitedata.Number(10)},
	})
	before := records[0].Numbers[sitedata.ColHouseholds]
	GroupSum(records, district, func(r *sitedata.Record) float64 {
		return r.Numbers[sitedata.ColHouseholds]
	})
	if records[0].Numbers[sitedata.ColHouseholds] != before {
		t.Error("input mutated")
	}
}
