package source

import (
	"context"
	"errors"

	"clinicreport/internal/core"
)

// ErrNotFound is returned when a record id does not exist (or was deleted).
var ErrNotFound = errors.New("expense not found")

// Ports for outbound adapters.
type (
	// ExpenseLister returns one page of expenses matching every supplied
	// constraint, ordered newest first, plus the total number of matches.
	ExpenseLister interface {
		ListExpenses(ctx context.Context, params ListParams) (Page, error)
	}

	ExpenseDeleter interface {
		DeleteExpense(ctx context.Context, id string) error
	}

	// DoctorLister returns the users that may appear in the doctor filter.
	DoctorLister interface {
		ListDoctors(ctx context.Context) ([]core.Doctor, error)
	}

	// Source is the full remote expense contract consumed by the report.
	Source interface {
		ExpenseLister
		ExpenseDeleter
		DoctorLister
	}
)

// Page is a slice of the filtered result set.
type Page struct {
	Records    []core.ExpenseRecord
	TotalCount int
}
