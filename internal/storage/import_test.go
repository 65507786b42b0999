package storage

import (
	"context"
	"testing"
	"time"

	"clinicreport/internal/core"
	"clinicreport/internal/source"
	"clinicreport/internal/source/memory"
)

func TestImport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := memory.New(time.UTC)
	seed.AddDoctor(core.Doctor{ID: "D1", Name: "Dr. Rao", Role: core.RoleDoctor})
	seed.AddDoctor(core.Doctor{ID: "D2", Name: "Dr. Sen", Role: core.RoleDoctor})
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"x1", "x2", "x3"} {
		if _, err := seed.Add(core.ExpenseRecord{
			ID:         id,
			Doctor:     core.DoctorRef{ID: "D1"},
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
			GrandTotal: core.Money{Cents: int64(100 * (i + 1))},
		}); err != nil {
			t.Fatal(err)
		}
	}

	// A rerun must not duplicate anything.
	for run := 1; run <= 2; run++ {
		n, err := repo.Import(ctx, seed)
		if err != nil {
			t.Fatalf("run %d: Import: %v", run, err)
		}
		if n != 3 {
			t.Errorf("run %d: imported %d, want 3", run, n)
		}
	}

	users, err := repo.ListDoctors(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 {
		t.Errorf("got %d users, want 2", len(users))
	}

	page, err := repo.ListExpenses(ctx, source.ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 3 {
		t.Fatalf("TotalCount = %d, want 3", page.TotalCount)
	}
	if got := page.Records[0].ID; got != "x3" {
		t.Errorf("newest record = %s, want x3", got)
	}
}

func TestImportKeepsExistingRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedRepo(t, repo)

	seed := memory.New(time.UTC)
	seed.AddDoctor(core.Doctor{ID: "D1", Name: "Dr. Rao", Role: core.RoleDoctor})
	if _, err := seed.Add(core.ExpenseRecord{
		ID:         "a",
		Doctor:     core.DoctorRef{ID: "D1"},
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		GrandTotal: core.Money{Cents: 99999},
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Import(ctx, seed); err != nil {
		t.Fatalf("Import: %v", err)
	}

	page, err := repo.ListExpenses(ctx, source.ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 5 {
		t.Fatalf("TotalCount = %d, want 5", page.TotalCount)
	}
	for _, r := range page.Records {
		if r.ID == "a" && r.GrandTotal.Cents != 100 {
			t.Errorf("record a total = %d, want the original 100", r.GrandTotal.Cents)
		}
	}
}
