package source

import (
	"sort"
	"time"

	"clinicreport/internal/core"
)

// Apply runs the listExpenses contract over an in-memory record set:
// filter by doctor and inclusive day range, order by creation time
// descending (id ascending on ties), then cut the requested page.
// Backends without a query engine of their own share it.
func Apply(records []core.ExpenseRecord, p ListParams, loc *time.Location) (Page, error) {
	if err := p.Validate(); err != nil {
		return Page{}, err
	}
	from, to, err := p.DayBounds(loc)
	if err != nil {
		return Page{}, err
	}

	matched := make([]core.ExpenseRecord, 0, len(records))
	for _, r := range records {
		if p.DoctorID != "" && r.Doctor.ID != p.DoctorID {
			continue
		}
		if !from.IsZero() && r.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !r.CreatedAt.Before(to) {
			continue
		}
		matched = append(matched, r)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	page := Page{TotalCount: len(matched)}
	start := p.Offset()
	if start < 0 || start >= len(matched) {
		page.Records = []core.ExpenseRecord{}
		return page, nil
	}
	end := start + p.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	page.Records = append([]core.ExpenseRecord(nil), matched[start:end]...)
	return page, nil
}
