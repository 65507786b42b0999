package source

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DayLayout is the canonical calendar-day format used across the wire.
const DayLayout = "2006-01-02"

// Query-string keys understood by every listing endpoint.
const (
	KeyPage      = "page"
	KeyPageSize  = "pageSize"
	KeyDoctor    = "doctor"
	KeyStartDate = "startDate"
	KeyEndDate   = "endDate"
)

var (
	ErrInvalidPage     = errors.New("page must be a positive integer")
	ErrInvalidPageSize = errors.New("page size must be a positive integer")
	ErrInvalidDay      = errors.New("date must use YYYY-MM-DD")
)

// ListParams is the parameter set of a listExpenses call. Empty string
// fields are unset and impose no constraint.
type ListParams struct {
	Page      int
	PageSize  int
	DoctorID  string
	StartDate string
	EndDate   string
}

// Offset returns the index of the first record of the page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p ListParams) Validate() error {
	if p.Page < 1 {
		return ErrInvalidPage
	}
	if p.PageSize < 1 {
		return ErrInvalidPageSize
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return fmt.Errorf("%w: %d is too large", ErrInvalidPage, p.Page)
	}
	for _, d := range []string{p.StartDate, p.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DayLayout, d); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDay, d)
		}
	}
	return nil
}

// Values encodes the params as a query string. Unset filters are omitted
// rather than sent empty.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	v.Set(KeyPage, strconv.Itoa(p.Page))
	v.Set(KeyPageSize, strconv.Itoa(p.PageSize))
	if p.DoctorID != "" {
		v.Set(KeyDoctor, p.DoctorID)
	}
	if p.StartDate != "" {
		v.Set(KeyStartDate, p.StartDate)
	}
	if p.EndDate != "" {
		v.Set(KeyEndDate, p.EndDate)
	}
	return v
}

// ParseListParams is the inverse of Values. Missing page/pageSize fall back
// to the supplied defaults.
func ParseListParams(q url.Values, defaultPageSize int) (ListParams, error) {
	p := ListParams{
		Page:      1,
		PageSize:  defaultPageSize,
		DoctorID:  strings.TrimSpace(q.Get(KeyDoctor)),
		StartDate: strings.TrimSpace(q.Get(KeyStartDate)),
		EndDate:   strings.TrimSpace(q.Get(KeyEndDate)),
	}
	if v := strings.TrimSpace(q.Get(KeyPage)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ListParams{}, ErrInvalidPage
		}
		p.Page = n
	}
	if v := strings.TrimSpace(q.Get(KeyPageSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ListParams{}, ErrInvalidPageSize
		}
		p.PageSize = n
	}
	if err := p.Validate(); err != nil {
		return ListParams{}, err
	}
	return p, nil
}

// DayBounds converts the inclusive day filters into a half-open instant
// range [from, to) in loc. Zero times mean unbounded.
func (p ListParams) DayBounds(loc *time.Location) (from, to time.Time, err error) {
	if loc == nil {
		loc = time.Local
	}
	if p.StartDate != "" {
		from, err = time.ParseInLocation(DayLayout, p.StartDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, p.StartDate)
		}
	}
	if p.EndDate != "" {
		end, perr := time.ParseInLocation(DayLayout, p.EndDate, loc)
		if perr != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, p.EndDate)
		}
		to = end.AddDate(0, 0, 1)
	}
	return from, to, nil
}
