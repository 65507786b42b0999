package adapters

import (
	"context"

	"clinicreport/internal/core"
	"clinicreport/internal/services"
	"clinicreport/internal/source"
)

// SourceAdapter assembles a backend and the services around it into the
// source.Source the report controller consumes. Reads go straight to the
// backend, deletes go through the expense service, doctors through the
// cached directory.
type SourceAdapter struct {
	lister  source.ExpenseLister
	service *services.ExpenseService
	doctors *services.DoctorDirectory
}

func NewSourceAdapter(lister source.ExpenseLister, service *services.ExpenseService, doctors *services.DoctorDirectory) *SourceAdapter {
	return &SourceAdapter{
		lister:  lister,
		service: service,
		doctors: doctors,
	}
}

// ListExpenses implements source.ExpenseLister
func (a *SourceAdapter) ListExpenses(ctx context.Context, p source.ListParams) (source.Page, error) {
	return a.lister.ListExpenses(ctx, p)
}

// DeleteExpense implements source.ExpenseDeleter
func (a *SourceAdapter) DeleteExpense(ctx context.Context, id string) error {
	return a.service.DeleteExpense(ctx, id)
}

// ListDoctors implements source.DoctorLister
func (a *SourceAdapter) ListDoctors(ctx context.Context) ([]core.Doctor, error) {
	return a.doctors.ListDoctors(ctx)
}
