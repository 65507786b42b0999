package report

import (
	"errors"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	n := Normalizer{Location: ist}

	tests := []struct {
		name       string
		start, end string
		want       DateRange
		wantErr    error
	}{
		{
			name:  "calendar days pass through",
			start: "2024-01-01", end: "2024-01-31",
			want: DateRange{Start: "2024-01-01", End: "2024-01-31"},
		},
		{
			name:  "rfc3339 maps to local day",
			start: "2023-12-31T20:00:00Z", end: "2024-01-31T10:00:00.000Z",
			want: DateRange{Start: "2024-01-01", End: "2024-01-31"},
		},
		{
			name:  "datetime-local input",
			start: "2024-01-01T08:30", end: "2024-01-02T23:59",
			want: DateRange{Start: "2024-01-01", End: "2024-01-02"},
		},
		{
			name:  "start only clears both",
			start: "2024-01-01", end: "",
			want: DateRange{},
		},
		{
			name:  "end only clears both",
			start: "  ", end: "2024-01-31",
			want: DateRange{},
		},
		{
			name: "both blank",
			want: DateRange{},
		},
		{
			name:  "garbage",
			start: "01/02/2024", end: "2024-01-31",
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.start, tt.end)
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

func TestNormalizeTimes(t *testing.T) {
	n := Normalizer{Location: time.UTC}
	start := time.Date(2024, 5, 1, 23, 0, 0, 0, time.FixedZone("X", -3*3600))
	end := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	if got := n.NormalizeTimes(&start, &end); got != (DateRange{Start: "2024-05-02", End: "2024-05-03"}) {
		t.Errorf("got %+v", got)
	}
	if got := n.NormalizeTimes(&start, nil); got.IsSet() || got.Start != "" {
		t.Errorf("half range should clear, got %+v", got)
	}
}

func TestDateRangeValidate(t *testing.T) {
	if err := (DateRange{Start: "2024-02-01", End: "2024-01-01"}).Validate(); !errors.Is(err, ErrInvertedRange) {
		t.Fatalf("expected ErrInvertedRange, got %v", err)
	}
	if err := (DateRange{Start: "2024-01-01", End: "2024-01-01"}).Validate(); err != nil {
		t.Fatalf("single day range should be valid: %v", err)
	}
	if err := (DateRange{}).Validate(); err != nil {
		t.Fatalf("unset range should be valid: %v", err)
	}
}
