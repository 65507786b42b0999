package storage

import (
	"context"
	"fmt"

	applog "clinicreport/internal/log"
	"clinicreport/internal/source"
)

const importPageSize = 100

// ImportSource is what Import reads from, typically a JSON seed store.
type ImportSource interface {
	source.ExpenseLister
	source.DoctorLister
}

// Import copies every user and expense of src into the repository. Users
// are upserted; expenses already present are skipped. The count is of
// expenses read from src.
func (r *Repository) Import(ctx context.Context, src ImportSource) (int, error) {
	users, err := src.ListDoctors(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if err := r.UpsertUser(ctx, u); err != nil {
			return 0, err
		}
	}

	params := source.ListParams{Page: 1, PageSize: importPageSize}
	imported := 0
	for {
		page, err := src.ListExpenses(ctx, params)
		if err != nil {
			return imported, fmt.Errorf("list expenses page %d: %w", params.Page, err)
		}
		for _, e := range page.Records {
			if err := r.InsertExpense(ctx, e); err != nil {
				return imported, err
			}
			imported++
		}
		if len(page.Records) < params.PageSize || imported >= page.TotalCount {
			break
		}
		params.Page++
	}

	r.logger.InfoContext(ctx, "Import finished",
		applog.FieldOperation, applog.OpImport,
		"users", len(users),
		"expenses", imported)
	return imported, nil
}
