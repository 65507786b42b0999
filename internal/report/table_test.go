package report

import (
	"testing"
	"time"

	"clinicreport/internal/core"
)

func TestNewRow(t *testing.T) {
	r := core.ExpenseRecord{
		ID:            "65f1c2a9b8e4d3",
		Doctor:        core.DoctorRef{ID: "D1", Name: "Dr. Mehta"},
		Patient:       core.PatientRef{FirstName: "Asha", PatientNumber: "P-0042"},
		CreatedAt:     time.Date(2024, 1, 5, 22, 0, 0, 0, time.UTC),
		TotalCost:     core.Money{Cents: 60000},
		GrandTotal:    core.Money{Cents: 50050},
		Paid:          true,
		PaymentMethod: core.PaymentUPI,
	}

	row := NewRow(r, time.FixedZone("IST", 5*3600+1800))

	checks := map[string][2]string{
		"ShortID":       {row.ShortID, "65f1c2a"},
		"Doctor":        {row.Doctor, "Dr. Mehta"},
		"Patient":       {row.Patient, "Asha - P-0042"},
		"Date":          {row.Date, "2024-01-06"},
		"GrandTotal":    {row.GrandTotal, "₹500.5"},
		"TotalCost":     {row.TotalCost, "₹600"},
		"Paid":          {row.Paid, "Yes"},
		"PaymentMethod": {row.PaymentMethod, "upi"},
		"EditURL":       {row.EditURL, "/update-expenses/65f1c2a9b8e4d3"},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}
}

func TestShortIDKeepsShortIDs(t *testing.T) {
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("ShortID = %q", got)
	}
}
