package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"clinicreport/internal/core"
)

// Expenses sheet columns.
const (
	colID = iota
	colCreatedAt
	colDoctorID
	colDoctorName
	colFirstName
	colLastName
	colPatientNumber
	colTotalCost
	colGrandTotal
	colPaid
	colPaymentMethod
	expenseCols
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseExpenseRows converts the Expenses values matrix. A leading header
// row is skipped, as is any row that does not form a valid record.
func parseExpenseRows(values [][]any, loc *time.Location) ([]core.ExpenseRecord, int) {
	out := make([]core.ExpenseRecord, 0, len(values))
	skipped := 0
	for i, row := range values {
		cols := toStrings(row)
		if i == 0 && isHeader(cols) {
			continue
		}
		if len(cols) == 0 || strings.Join(cols, "") == "" {
			continue
		}
		r, err := parseExpenseRow(cols, loc)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, skipped
}

func parseExpenseRow(cols []string, loc *time.Location) (core.ExpenseRecord, error) {
	if len(cols) < colGrandTotal+1 {
		return core.ExpenseRecord{}, fmt.Errorf("expected at least %d columns, got %d", colGrandTotal+1, len(cols))
	}
	created, err := parseTime(cols[colCreatedAt], loc)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	total, err := parseAmount(cols[colTotalCost])
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("total cost: %w", err)
	}
	grand, err := core.ParseDecimalToCents(cols[colGrandTotal])
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("grand total: %w", err)
	}

	r := core.ExpenseRecord{
		ID:        cols[colID],
		Doctor:    core.DoctorRef{ID: cols[colDoctorID], Name: cols[colDoctorName]},
		CreatedAt: created,
		Patient: core.PatientRef{
			FirstName:     cols[colFirstName],
			LastName:      cols[colLastName],
			PatientNumber: cols[colPatientNumber],
		},
		TotalCost:     core.Money{Cents: total},
		GrandTotal:    core.Money{Cents: grand},
		Paid:          parseBool(safeGet(cols, colPaid)),
		PaymentMethod: core.ParsePaymentMethod(safeGet(cols, colPaymentMethod)),
	}
	return r, r.Validate()
}

// parseDoctorRows reads id, name and role columns. Rows without a numeric
// role are kept with role 0 so they never show up as doctors.
func parseDoctorRows(values [][]any) []core.Doctor {
	var out []core.Doctor
	for i, row := range values {
		cols := toStrings(row)
		if i == 0 && isHeader(cols) {
			continue
		}
		if len(cols) < 2 || cols[0] == "" {
			continue
		}
		role, _ := strconv.Atoi(safeGet(cols, 2))
		out = append(out, core.Doctor{ID: cols[0], Name: cols[1], Role: role})
	}
	return out
}

// rowOf returns the zero-based row index of id in an id column, or -1.
func rowOf(values [][]any, id string) int {
	id = strings.TrimSpace(id)
	for i, row := range values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i
		}
	}
	return -1
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// parseAmount treats a blank cell as zero.
func parseAmount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return core.ParseDecimalToCents(s)
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1", "paid":
		return true
	}
	return false
}

func isHeader(cols []string) bool {
	return len(cols) > 0 && strings.EqualFold(cols[0], "id")
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
