package report

import (
	"testing"

	"clinicreport/internal/source"
)

func TestBuildQueryOmitsUnsetFilters(t *testing.T) {
	filters := []FilterState{
		{},
		{DoctorID: "D1"},
		{Range: DateRange{Start: "2024-01-01", End: "2024-01-31"}},
	}
	for _, f := range filters {
		v := BuildQuery(f, DefaultPagination()).Values()
		if f.DoctorID == "" && v.Has(source.KeyDoctor) {
			t.Errorf("%+v: doctor key present: %v", f, v)
		}
		if !f.Range.IsSet() && (v.Has(source.KeyStartDate) || v.Has(source.KeyEndDate)) {
			t.Errorf("%+v: date keys present: %v", f, v)
		}
	}
}

func TestBuildQueryFullFilter(t *testing.T) {
	f := FilterState{DoctorID: "D1", Range: DateRange{Start: "2024-01-01", End: "2024-01-31"}}
	got := BuildQuery(f, Pagination{Page: 1, PageSize: 10})
	want := source.ListParams{Page: 1, PageSize: 10, DoctorID: "D1", StartDate: "2024-01-01", EndDate: "2024-01-31"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestBuildQueryPageChangeOnlyChangesPage(t *testing.T) {
	f := FilterState{DoctorID: "D1", Range: DateRange{Start: "2024-01-01", End: "2024-01-31"}}
	first := BuildQuery(f, Pagination{Page: 1, PageSize: 20})
	third := BuildQuery(f, Pagination{Page: 3, PageSize: 20})

	if third.Page != 3 {
		t.Fatalf("page = %d, want 3", third.Page)
	}
	third.Page = first.Page
	if third != first {
		t.Fatalf("params differ beyond page: %+v vs %+v", first, third)
	}
}
