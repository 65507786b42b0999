package report

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrInvertedRange   = errors.New("start date is after end date")
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size not allowed")
)

// PageSizes are the page sizes offered by the pagination control.
var PageSizes = []int{10, 20, 50}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// FilterState is the applied filter selection. An empty DoctorID means all
// doctors.
type FilterState struct {
	Range    DateRange `json:"range"`
	DoctorID string    `json:"doctorId,omitempty"`
}

func (f FilterState) Validate() error {
	return f.Range.Validate()
}

// PendingFilter is what the filter form submits before normalization.
type PendingFilter struct {
	Start    string
	End      string
	DoctorID string
}

type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func DefaultPagination() Pagination {
	return Pagination{Page: DefaultPage, PageSize: DefaultPageSize}
}

func ValidPageSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

func (p Pagination) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, p.Page)
	}
	if !ValidPageSize(p.PageSize) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrInvalidPageSize, p.PageSize, PageSizes)
	}
	// The first record offset must fit in an int.
	if p.Page-1 > math.MaxInt/p.PageSize {
		return fmt.Errorf("%w: %d is too large", ErrInvalidPage, p.Page)
	}
	return nil
}

// TotalPages returns the number of pages needed for total records, never
// less than one.
func (p Pagination) TotalPages(total int) int {
	if p.PageSize < 1 || total <= 0 {
		return 1
	}
	return (total + p.PageSize - 1) / p.PageSize
}
