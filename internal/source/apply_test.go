package source

import (
	"errors"
	"testing"
	"time"

	"clinicreport/internal/core"
)

func rec(id, doctor string, at time.Time, cents int64) core.ExpenseRecord {
	return core.ExpenseRecord{
		ID:         id,
		Doctor:     core.DoctorRef{ID: doctor},
		CreatedAt:  at,
		GrandTotal: core.Money{Cents: cents},
	}
}

func ids(p Page) []string {
	out := make([]string, len(p.Records))
	for i, r := range p.Records {
		out[i] = r.ID
	}
	return out
}

func TestApply(t *testing.T) {
	loc := time.UTC
	day := func(d, h int) time.Time { return time.Date(2024, 1, d, h, 0, 0, 0, loc) }
	records := []core.ExpenseRecord{
		rec("a", "D1", day(1, 9), 100),
		rec("b", "D2", day(15, 9), 200),
		rec("c", "D1", day(31, 23), 300),
		rec("d", "D1", time.Date(2024, 2, 1, 0, 0, 0, 0, loc), 400),
		rec("e", "D1", day(15, 9), 500),
	}

	tests := []struct {
		name      string
		params    ListParams
		wantIDs   []string
		wantTotal int
	}{
		{
			name:      "no constraints newest first",
			params:    ListParams{Page: 1, PageSize: 10},
			wantIDs:   []string{"d", "c", "b", "e", "a"},
			wantTotal: 5,
		},
		{
			name:      "doctor and inclusive range",
			params:    ListParams{Page: 1, PageSize: 10, DoctorID: "D1", StartDate: "2024-01-01", EndDate: "2024-01-31"},
			wantIDs:   []string{"c", "e", "a"},
			wantTotal: 3,
		},
		{
			name:      "second page",
			params:    ListParams{Page: 2, PageSize: 2},
			wantIDs:   []string{"b", "e"},
			wantTotal: 5,
		},
		{
			name:      "last partial page",
			params:    ListParams{Page: 3, PageSize: 2},
			wantIDs:   []string{"a"},
			wantTotal: 5,
		},
		{
			name:      "page past the end",
			params:    ListParams{Page: 9, PageSize: 2},
			wantIDs:   []string{},
			wantTotal: 5,
		},
		{
			name:      "start only",
			params:    ListParams{Page: 1, PageSize: 10, StartDate: "2024-01-31"},
			wantIDs:   []string{"d", "c"},
			wantTotal: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Apply(records, tt.params, loc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.TotalCount != tt.wantTotal {
				t.Errorf("TotalCount = %d, want %d", page.TotalCount, tt.wantTotal)
			}
			got := ids(page)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", got, tt.wantIDs)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Fatalf("ids = %v, want %v", got, tt.wantIDs)
				}
			}
		})
	}
}

func TestApplyRejectsInvalidParams(t *testing.T) {
	records := []core.ExpenseRecord{rec("a", "D1", time.Now(), 100)}
	for _, p := range []ListParams{
		{Page: 0, PageSize: 10},
		{Page: 200000000000000000, PageSize: 50},
	} {
		if _, err := Apply(records, p, time.UTC); !errors.Is(err, ErrInvalidPage) {
			t.Errorf("%+v: err = %v, want ErrInvalidPage", p, err)
		}
	}
}
