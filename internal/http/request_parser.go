// This file turns request data into report triggers.

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"clinicreport/internal/report"
)

// TriggerKind says which controller operation a request maps to.
type TriggerKind int

const (
	// TriggerShow mounts a fresh view or refetches an existing one.
	TriggerShow TriggerKind = iota
	TriggerApply
	TriggerPage
)

// Trigger is a parsed view request.
type Trigger struct {
	Kind     TriggerKind
	Filter   report.PendingFilter
	Page     int
	PageSize int
}

// ParseTrigger reads the view query. apply=1 applies the filter fields;
// page or pageSize navigates, a missing one keeps its current value.
func ParseTrigger(q url.Values, current report.Pagination) (Trigger, error) {
	if q.Get("apply") == "1" {
		return Trigger{
			Kind: TriggerApply,
			Filter: report.PendingFilter{
				Start:    sanitizeInput(q.Get("startDate")),
				End:      sanitizeInput(q.Get("endDate")),
				DoctorID: sanitizeInput(q.Get("doctor")),
			},
		}, nil
	}

	rawPage, rawSize := strings.TrimSpace(q.Get("page")), strings.TrimSpace(q.Get("pageSize"))
	if rawPage == "" && rawSize == "" {
		return Trigger{Kind: TriggerShow}, nil
	}

	t := Trigger{Kind: TriggerPage, Page: current.Page, PageSize: current.PageSize}
	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		if err != nil {
			return Trigger{}, fmt.Errorf("page %q: %w", rawPage, report.ErrInvalidPage)
		}
		t.Page = n
	}
	if rawSize != "" {
		n, err := strconv.Atoi(rawSize)
		if err != nil {
			return Trigger{}, fmt.Errorf("page size %q: %w", rawSize, report.ErrInvalidPageSize)
		}
		t.PageSize = n
	}
	return t, nil
}

// sessionToken reads the session token from the named cookie, falling
// back to a bearer Authorization header.
func sessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
