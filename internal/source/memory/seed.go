package memory

import (
	"time"

	"clinicreport/internal/core"
)

// Seed documents use the field names of the clinic API.
type seedDoc struct {
	Doctors  []seedUser    `json:"doctors"`
	Expenses []seedExpense `json:"expenses"`
}

type seedUser struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Role int    `json:"role"`
}

type seedPatient struct {
	ID            string `json:"_id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	PatientNumber string `json:"patientNumber"`
}

type seedExpense struct {
	ID            string      `json:"_id"`
	Doctor        seedUser    `json:"doctor"`
	Patient       seedPatient `json:"patient"`
	CreatedAt     time.Time   `json:"created_at"`
	TotalCost     core.Money  `json:"totalCost"`
	GrandTotal    core.Money  `json:"grandTotal"`
	Paid          bool        `json:"paid"`
	PaymentMethod string      `json:"paymentMethod"`
}

func (e seedExpense) record() core.ExpenseRecord {
	return core.ExpenseRecord{
		ID:     e.ID,
		Doctor: core.DoctorRef{ID: e.Doctor.ID, Name: e.Doctor.Name},
		Patient: core.PatientRef{
			ID:            e.Patient.ID,
			FirstName:     e.Patient.FirstName,
			LastName:      e.Patient.LastName,
			PatientNumber: e.Patient.PatientNumber,
		},
		CreatedAt:     e.CreatedAt,
		TotalCost:     e.TotalCost,
		GrandTotal:    e.GrandTotal,
		Paid:          e.Paid,
		PaymentMethod: core.ParsePaymentMethod(e.PaymentMethod),
	}
}
