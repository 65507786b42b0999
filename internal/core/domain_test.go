package core

import (
	"errors"
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("expected ok for zero, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestExpenseRecordValidate(t *testing.T) {
	good := ExpenseRecord{
		ID:         "65a1f0c2e4b0a1b2c3d4e5f6",
		Doctor:     DoctorRef{ID: "D1", Name: "Dr. Rao"},
		Patient:    PatientRef{FirstName: "Asha", PatientNumber: "P-104"},
		CreatedAt:  time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
		TotalCost:  Money{Cents: 60000},
		GrandTotal: Money{Cents: 50000},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ExpenseRecord)
	}{
		{"empty id", func(e *ExpenseRecord) { e.ID = " " }},
		{"empty doctor", func(e *ExpenseRecord) { e.Doctor.ID = "" }},
		{"zero created at", func(e *ExpenseRecord) { e.CreatedAt = time.Time{} }},
		{"negative total cost", func(e *ExpenseRecord) { e.TotalCost.Cents = -5 }},
		{"negative grand total", func(e *ExpenseRecord) { e.GrandTotal.Cents = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := good
			tt.mutate(&e)
			if err := e.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		in   string
		want PaymentMethod
	}{
		{"Cash", PaymentCash},
		{" UPI ", PaymentUPI},
		{"insurance", PaymentInsurance},
		{"Cheque", PaymentMethod("Cheque")},
	}
	for _, tt := range tests {
		if got := ParsePaymentMethod(tt.in); got != tt.want {
			t.Errorf("ParsePaymentMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDoctorsOnly(t *testing.T) {
	users := []Doctor{
		{ID: "U1", Name: "Admin", Role: 0},
		{ID: "D1", Name: "Dr. Rao", Role: RoleDoctor},
		{ID: "U2", Name: "Reception", Role: 2},
		{ID: "D2", Name: "Dr. Iyer", Role: RoleDoctor},
	}
	got := DoctorsOnly(users)
	if len(got) != 2 || got[0].ID != "D1" || got[1].ID != "D2" {
		t.Fatalf("unexpected doctors: %+v", got)
	}
}
