package report

import "clinicreport/internal/source"

// BuildQuery maps the current filter and pagination onto listExpenses
// parameters. Unset filters stay empty and are dropped by ListParams.Values.
func BuildQuery(f FilterState, p Pagination) source.ListParams {
	q := source.ListParams{
		Page:     p.Page,
		PageSize: p.PageSize,
		DoctorID: f.DoctorID,
	}
	if f.Range.IsSet() {
		q.StartDate = f.Range.Start
		q.EndDate = f.Range.End
	}
	return q
}
