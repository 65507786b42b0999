package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentCard      PaymentMethod = "card"
	PaymentUPI       PaymentMethod = "upi"
	PaymentInsurance PaymentMethod = "insurance"
	PaymentOther     PaymentMethod = "other"
)

// RoleDoctor is the user role the clinic assigns to doctors.
const RoleDoctor = 1

type (
	PaymentMethod string

	Money struct {
		Cents int64
	}

	// DoctorRef is the doctor embedded in an expense record.
	DoctorRef struct {
		ID   string
		Name string
	}

	// PatientRef is the patient embedded in an expense record.
	PatientRef struct {
		ID            string
		FirstName     string
		LastName      string
		PatientNumber string
	}

	// ExpenseRecord is one billing transaction. GrandTotal is the billed
	// amount and the only figure used for earnings.
	ExpenseRecord struct {
		ID            string
		Doctor        DoctorRef
		Patient       PatientRef
		CreatedAt     time.Time
		TotalCost     Money
		GrandTotal    Money
		Paid          bool
		PaymentMethod PaymentMethod
	}

	// Doctor is a selectable option for the doctor filter.
	Doctor struct {
		ID   string
		Name string
		Role int
	}
)

var (
	ErrEmptyID        = errors.New("empty id")
	ErrEmptyDoctor    = errors.New("empty doctor id")
	ErrZeroCreatedAt  = errors.New("creation time cannot be zero")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// ParsePaymentMethod maps free-form input to a known method. Unknown values
// are kept verbatim so listings never lose information.
func ParsePaymentMethod(s string) PaymentMethod {
	v := strings.ToLower(strings.TrimSpace(s))
	switch PaymentMethod(v) {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentInsurance, PaymentOther:
		return PaymentMethod(v)
	}
	return PaymentMethod(strings.TrimSpace(s))
}

func (p PaymentMethod) String() string {
	return string(p)
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(e.Doctor.ID) == "" {
		return ErrEmptyDoctor
	}
	if e.CreatedAt.IsZero() {
		return ErrZeroCreatedAt
	}
	if err := e.TotalCost.Validate(); err != nil {
		return fmt.Errorf("invalid total cost: %w", err)
	}
	if err := e.GrandTotal.Validate(); err != nil {
		return fmt.Errorf("invalid grand total: %w", err)
	}
	return nil
}

// IsDoctor reports whether the user carries the doctor role.
func (d Doctor) IsDoctor() bool {
	return d.Role == RoleDoctor
}

// DoctorsOnly keeps the users that can be picked in the doctor filter,
// preserving order.
func DoctorsOnly(users []Doctor) []Doctor {
	out := make([]Doctor, 0, len(users))
	for _, u := range users {
		if u.IsDoctor() {
			out = append(out, u)
		}
	}
	return out
}
