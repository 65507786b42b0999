package report

import (
	"context"
	"time"

	"clinicreport/internal/core"
	"clinicreport/internal/source"
)

// windowPageSize is the page size used when walking the chart window.
const windowPageSize = 50

// CollectWindow fetches every record of the rolling window ending on today
// for doctorID (empty for all doctors), page by page.
func CollectWindow(ctx context.Context, lister source.ExpenseLister, doctorID string, today time.Time) ([]core.ExpenseRecord, error) {
	params := source.ListParams{
		Page:      1,
		PageSize:  windowPageSize,
		DoctorID:  doctorID,
		StartDate: WindowStart(today).Format(source.DayLayout),
		EndDate:   today.Format(source.DayLayout),
	}

	var all []core.ExpenseRecord
	for {
		page, err := lister.ListExpenses(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if len(page.Records) < params.PageSize || len(all) >= page.TotalCount {
			return all, nil
		}
		params.Page++
	}
}
