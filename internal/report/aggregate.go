package report

import (
	"fmt"
	"strings"
	"time"

	"clinicreport/internal/core"
	"clinicreport/internal/source"
)

// WindowDays is the length of the rolling earnings window.
const WindowDays = 7

// ChartTitle is the dataset label shown above the bars.
const ChartTitle = "Daily Earnings (Last 7 Days)"

const labelLayout = "Jan 02"

type DailyBucket struct {
	Day   string     `json:"day"`
	Label string     `json:"label"`
	Total core.Money `json:"total"`
}

// Chart holds the rolling window, oldest day first.
type Chart struct {
	Buckets [WindowDays]DailyBucket `json:"buckets"`
}

func (c Chart) Labels() []string {
	out := make([]string, WindowDays)
	for i, b := range c.Buckets {
		out[i] = b.Label
	}
	return out
}

func (c Chart) Totals() []core.Money {
	out := make([]core.Money, WindowDays)
	for i, b := range c.Buckets {
		out[i] = b.Total
	}
	return out
}

func (c Chart) Sum() core.Money {
	var sum core.Money
	for _, b := range c.Buckets {
		sum = sum.Add(b.Total)
	}
	return sum
}

// WindowStart returns the first day of the window ending on today.
func WindowStart(today time.Time) time.Time {
	y, m, d := today.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, today.Location()).AddDate(0, 0, -(WindowDays - 1))
}

// Aggregate sums GrandTotal per creation day over [today-6, today], using
// today's location to decide calendar days. Records outside the window are
// ignored. Empty input still yields seven labeled zero buckets.
func Aggregate(records []core.ExpenseRecord, today time.Time) Chart {
	loc := today.Location()
	first := WindowStart(today)

	var chart Chart
	index := make(map[string]int, WindowDays)
	for i := range chart.Buckets {
		day := first.AddDate(0, 0, i)
		key := day.Format(source.DayLayout)
		chart.Buckets[i] = DailyBucket{Day: key, Label: day.Format(labelLayout)}
		index[key] = i
	}

	for _, r := range records {
		i, ok := index[r.CreatedAt.In(loc).Format(source.DayLayout)]
		if !ok {
			continue
		}
		chart.Buckets[i].Total = chart.Buckets[i].Total.Add(r.GrandTotal)
	}
	return chart
}

// ChartScope selects which records feed the chart.
type ChartScope string

const (
	// ScopePage aggregates the page currently on screen.
	ScopePage ChartScope = "page"
	// ScopeWindow aggregates every record in the window that matches the
	// doctor filter, independent of pagination and the date filter.
	ScopeWindow ChartScope = "window"
)

func ParseChartScope(s string) (ChartScope, error) {
	switch ChartScope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopePage:
		return ScopePage, nil
	case ScopeWindow:
		return ScopeWindow, nil
	}
	return "", fmt.Errorf("unknown chart scope %q", s)
}
