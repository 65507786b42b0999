package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"clinicreport/internal/report"
)

const chartWidth = 40

// printView writes the table, pagination line and chart of v.
func printView(w io.Writer, v report.View) error {
	switch {
	case v.Error != "":
		fmt.Fprintf(w, "Could not load expenses: %s\n", v.Error)
	case v.Empty:
		fmt.Fprintln(w, "No Expenses Found")
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDOCTOR\tPATIENT\tDATE\tGRAND TOTAL\tPAID\tMETHOD\tTOTAL COST")
		for _, r := range v.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ShortID, r.Doctor, r.Patient, r.Date, r.GrandTotal, r.Paid, r.PaymentMethod, r.TotalCost)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nPage %d of %d, %d expenses, %d per page\n",
		v.Pagination.Page, v.TotalPages, v.TotalCount, v.Pagination.PageSize)
	if v.Filter.Range.IsSet() {
		fmt.Fprintf(w, "Range %s to %s\n", v.Filter.Range.Start, v.Filter.Range.End)
	}
	if v.Filter.DoctorID != "" {
		fmt.Fprintf(w, "Doctor %s\n", v.Filter.DoctorID)
	}

	fmt.Fprintf(w, "\n%s (%s)\n", v.ChartTitle, v.ChartScope)
	var maxCents int64
	for _, b := range v.Chart.Buckets {
		maxCents = max(maxCents, b.Total.Cents)
	}
	for _, b := range v.Chart.Buckets {
		n := 0
		if maxCents > 0 {
			n = int(b.Total.Cents * chartWidth / maxCents)
		}
		if n == 0 && b.Total.Cents > 0 {
			n = 1
		}
		fmt.Fprintf(w, "%s  %-*s %s\n", b.Label, chartWidth, strings.Repeat("#", n), b.Total)
	}
	_, err := fmt.Fprintf(w, "Total %s\n", v.Chart.Sum())
	return err
}
