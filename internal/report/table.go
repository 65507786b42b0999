package report

import (
	"fmt"
	"time"

	"clinicreport/internal/core"
	"clinicreport/internal/source"
)

const shortIDLen = 7

// Row is one expense formatted for the table.
type Row struct {
	ID            string `json:"id"`
	ShortID       string `json:"shortId"`
	Doctor        string `json:"doctor"`
	Patient       string `json:"patient"`
	Date          string `json:"date"`
	GrandTotal    string `json:"grandTotal"`
	Paid          string `json:"paid"`
	PaymentMethod string `json:"paymentMethod"`
	TotalCost     string `json:"totalCost"`
	EditURL       string `json:"editUrl"`
	DeleteURL     string `json:"deleteUrl"`
}

func NewRow(r core.ExpenseRecord, loc *time.Location) Row {
	return Row{
		ID:            r.ID,
		ShortID:       ShortID(r.ID),
		Doctor:        r.Doctor.Name,
		Patient:       fmt.Sprintf("%s - %s", r.Patient.FirstName, r.Patient.PatientNumber),
		Date:          r.CreatedAt.In(loc).Format(source.DayLayout),
		GrandTotal:    r.GrandTotal.String(),
		Paid:          yesNo(r.Paid),
		PaymentMethod: r.PaymentMethod.String(),
		TotalCost:     r.TotalCost.String(),
		EditURL:       "/update-expenses/" + r.ID,
		DeleteURL:     "/admin/expenses/" + r.ID + "/delete",
	}
}

func Rows(records []core.ExpenseRecord, loc *time.Location) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = NewRow(r, loc)
	}
	return rows
}

// ShortID truncates on runes so multi-byte ids are not split.
func ShortID(id string) string {
	r := []rune(id)
	if len(r) <= shortIDLen {
		return id
	}
	return string(r[:shortIDLen])
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
