package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"clinicreport/internal/report"
)

func TestParseTrigger(t *testing.T) {
	current := report.Pagination{Page: 3, PageSize: 20}

	tests := []struct {
		name    string
		query   string
		want    Trigger
		wantErr error
	}{
		{
			name:  "no params shows the view",
			query: "",
			want:  Trigger{Kind: TriggerShow},
		},
		{
			name:  "apply reads the filter fields",
			query: "apply=1&startDate=2024-01-01&endDate=2024-01-31&doctor=D1",
			want: Trigger{Kind: TriggerApply, Filter: report.PendingFilter{
				Start: "2024-01-01", End: "2024-01-31", DoctorID: "D1",
			}},
		},
		{
			name:  "apply ignores page params",
			query: "apply=1&page=4",
			want:  Trigger{Kind: TriggerApply},
		},
		{
			name:  "apply strips control characters",
			query: "apply=1&doctor=" + url.QueryEscape(" D1\x00\n "),
			want:  Trigger{Kind: TriggerApply, Filter: report.PendingFilter{DoctorID: "D1"}},
		},
		{
			name:  "page keeps current size",
			query: "page=5",
			want:  Trigger{Kind: TriggerPage, Page: 5, PageSize: 20},
		},
		{
			name:  "size keeps current page",
			query: "pageSize=50",
			want:  Trigger{Kind: TriggerPage, Page: 3, PageSize: 50},
		},
		{
			name:  "out of range values are left to the controller",
			query: "page=0&pageSize=7",
			want:  Trigger{Kind: TriggerPage, Page: 0, PageSize: 7},
		},
		{
			name:    "page not a number",
			query:   "page=two",
			wantErr: report.ErrInvalidPage,
		},
		{
			name:    "size not a number",
			query:   "pageSize=lots",
			wantErr: report.ErrInvalidPageSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			got, err := ParseTrigger(q, current)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSessionToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		auth   string
		want   string
	}{
		{name: "cookie", cookie: "abc", want: "abc"},
		{name: "bearer", auth: "Bearer xyz ", want: "xyz"},
		{name: "cookie wins", cookie: "abc", auth: "Bearer xyz", want: "abc"},
		{name: "other scheme", auth: "Basic dXNlcg==", want: ""},
		{name: "none", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "sid", Value: tt.cookie})
			}
			if tt.auth != "" {
				r.Header.Set("Authorization", tt.auth)
			}
			if got := sessionToken(r, "sid"); got != tt.want {
				t.Errorf("sessionToken = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  plain ":     "plain",
		"a\x00b":       "ab",
		"tab\there":    "tabhere",
		"del\x7f":      "del",
		"unicode ₹ ok": "unicode ₹ ok",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
