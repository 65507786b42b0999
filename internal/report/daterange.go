package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"clinicreport/internal/source"
)

var ErrInvalidDate = errors.New("invalid date")

// Layouts accepted from date pickers, tried in order.
var inputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// DateRange holds canonical YYYY-MM-DD days. Both fields are empty when the
// range is unset; a half-set range never leaves the normalizer.
type DateRange struct {
	Start string `json:"startDate,omitempty"`
	End   string `json:"endDate,omitempty"`
}

func (r DateRange) IsSet() bool {
	return r.Start != "" && r.End != ""
}

// Validate rejects a range whose start falls after its end. Canonical days
// compare correctly as strings.
func (r DateRange) Validate() error {
	if r.IsSet() && r.Start > r.End {
		return fmt.Errorf("%w: %s is after %s", ErrInvertedRange, r.Start, r.End)
	}
	return nil
}

// Normalizer turns raw picker values into calendar days of Location.
// The zero value uses time.Local.
type Normalizer struct {
	Location *time.Location
}

func (n Normalizer) location() *time.Location {
	if n.Location == nil {
		return time.Local
	}
	return n.Location
}

// Normalize converts a raw start/end pair. A blank value on either side
// clears both sides.
func (n Normalizer) Normalize(start, end string) (DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return DateRange{}, nil
	}

	s, err := n.day(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := n.day(end)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: s, End: e}, nil
}

// NormalizeTimes is Normalize for callers that already hold instants.
func (n Normalizer) NormalizeTimes(start, end *time.Time) DateRange {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return DateRange{}
	}
	loc := n.location()
	return DateRange{
		Start: start.In(loc).Format(source.DayLayout),
		End:   end.In(loc).Format(source.DayLayout),
	}
}

func (n Normalizer) day(raw string) (string, error) {
	if t, err := time.Parse(source.DayLayout, raw); err == nil {
		return t.Format(source.DayLayout), nil
	}
	loc := n.location()
	for _, layout := range inputLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t.In(loc).Format(source.DayLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}
