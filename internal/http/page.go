package http

import (
	"net/url"
	"strconv"

	"clinicreport/internal/core"
	"clinicreport/internal/report"
)

// bar is one column of the earnings chart, scaled to the busiest day.
type bar struct {
	Label  string
	Total  string
	Height int
}

type pageLink struct {
	Label  string
	URL    string
	Active bool
}

type pageData struct {
	View       report.View
	Doctors    []core.Doctor
	Bars       []bar
	ChartTotal string
	PageSizes  []pageLink
	PrevURL    string
	NextURL    string
}

func newPageData(v report.View, doctors []core.Doctor) pageData {
	d := pageData{
		View:       v,
		Doctors:    doctors,
		Bars:       chartBars(v.Chart),
		ChartTotal: v.Chart.Sum().String(),
	}
	size := v.Pagination.PageSize
	for _, n := range report.PageSizes {
		d.PageSizes = append(d.PageSizes, pageLink{
			Label:  strconv.Itoa(n),
			URL:    pageURL(1, n),
			Active: n == size,
		})
	}
	if v.Pagination.Page > 1 {
		d.PrevURL = pageURL(v.Pagination.Page-1, size)
	}
	if v.Pagination.Page < v.TotalPages {
		d.NextURL = pageURL(v.Pagination.Page+1, size)
	}
	return d
}

func pageURL(page, size int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(size))
	return "/admin/expenses?" + q.Encode()
}

// chartBars converts buckets to percentage heights. Non-zero days get at
// least 2% so they stay visible next to a much larger day.
func chartBars(c report.Chart) []bar {
	var maxCents int64
	for _, b := range c.Buckets {
		if b.Total.Cents > maxCents {
			maxCents = b.Total.Cents
		}
	}

	out := make([]bar, 0, len(c.Buckets))
	for _, b := range c.Buckets {
		height := 0
		if maxCents > 0 && b.Total.Cents > 0 {
			height = int((b.Total.Cents*100 + maxCents/2) / maxCents)
			if height < 2 {
				height = 2
			}
		}
		out = append(out, bar{Label: b.Label, Total: b.Total.String(), Height: height})
	}
	return out
}
