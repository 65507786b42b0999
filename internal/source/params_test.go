package source

import (
	"errors"
	"net/url"
	"testing"
	"time"
)

func TestListParamsValuesOmitsUnset(t *testing.T) {
	v := ListParams{Page: 2, PageSize: 20}.Values()
	for _, key := range []string{KeyDoctor, KeyStartDate, KeyEndDate} {
		if _, ok := v[key]; ok {
			t.Errorf("key %q should be omitted, got %v", key, v)
		}
	}
	if v.Get(KeyPage) != "2" || v.Get(KeyPageSize) != "20" {
		t.Fatalf("unexpected paging values: %v", v)
	}
}

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    ListParams
		wantErr error
	}{
		{
			name:  "defaults",
			query: url.Values{},
			want:  ListParams{Page: 1, PageSize: 10},
		},
		{
			name:  "all values",
			query: url.Values{"page": {"3"}, "pageSize": {"50"}, "doctor": {"D1"}, "startDate": {"2024-01-01"}, "endDate": {"2024-01-31"}},
			want:  ListParams{Page: 3, PageSize: 50, DoctorID: "D1", StartDate: "2024-01-01", EndDate: "2024-01-31"},
		},
		{
			name:    "non numeric page",
			query:   url.Values{"page": {"x"}},
			wantErr: ErrInvalidPage,
		},
		{
			name:    "zero page size",
			query:   url.Values{"pageSize": {"0"}},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "page offset overflows",
			query:   url.Values{"page": {"200000000000000000"}, "pageSize": {"50"}},
			wantErr: ErrInvalidPage,
		},
		{
			name:    "bad date",
			query:   url.Values{"startDate": {"01/02/2024"}},
			wantErr: ErrInvalidDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseListParams(tt.query, 10)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	from, to, err := ListParams{Page: 1, PageSize: 10, StartDate: "2024-01-01", EndDate: "2024-01-31"}.DayBounds(loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !from.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("from = %v", from)
	}
	if !to.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("to = %v", to)
	}
}
