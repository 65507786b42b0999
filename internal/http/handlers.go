package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"clinicreport/internal/core"
	applog "clinicreport/internal/log"
	"clinicreport/internal/report"
)

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, report.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, report.ErrInvalidDate),
		errors.Is(err, report.ErrInvertedRange),
		errors.Is(err, report.ErrInvalidPage),
		errors.Is(err, report.ErrInvalidPageSize),
		errors.Is(err, core.ErrEmptyID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// runTrigger performs the controller operation the query asks for.
func runTrigger(ctx context.Context, c *report.Controller, q url.Values) error {
	current := c.Snapshot()
	t, err := ParseTrigger(q, current.Pagination)
	if err != nil {
		return err
	}
	switch t.Kind {
	case TriggerApply:
		return c.ApplyFilters(ctx, t.Filter)
	case TriggerPage:
		return c.ChangePage(ctx, t.Page, t.PageSize)
	default:
		if current.State == report.StateIdle {
			return c.Mount(ctx)
		}
		return c.Refresh(ctx)
	}
}

// loadView runs the trigger and lists the doctor options concurrently.
// A doctor lookup failure only empties the dropdown.
func (s *Server) loadView(ctx context.Context, c *report.Controller, q url.Values) (report.View, []core.Doctor, error) {
	var (
		view    report.View
		doctors []core.Doctor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := runTrigger(gctx, c, q); err != nil {
			return err
		}
		view = c.Snapshot()
		return nil
	})
	g.Go(func() error {
		d, err := c.Doctors(gctx)
		if err != nil {
			if errors.Is(err, report.ErrUnauthenticated) {
				return err
			}
			applog.FromContext(ctx).WarnContext(ctx, "Doctor options unavailable", applog.FieldError, err)
			return nil
		}
		doctors = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.View{}, nil, err
	}
	return view, doctors, nil
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.controllerFor(ctx)
	if err != nil {
		s.htmlError(w, r, err)
		return
	}

	view, doctors, err := s.loadView(ctx, c, r.URL.Query())
	if err != nil {
		s.htmlError(w, r, err)
		return
	}
	s.render(w, r, "expenses.html", newPageData(view, doctors))
}

func (s *Server) handleAPIExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.controllerFor(ctx)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}
	if err := runTrigger(ctx, c, r.URL.Query()); err != nil {
		s.jsonError(w, r, err)
		return
	}
	NewResponse().JSON(c.Snapshot()).Write(w)
}

type doctorOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleAPIDoctors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.controllerFor(ctx)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}
	doctors, err := c.Doctors(ctx)
	if err != nil {
		s.jsonError(w, r, err)
		return
	}
	out := make([]doctorOption, len(doctors))
	for i, d := range doctors {
		out[i] = doctorOption{ID: d.ID, Name: d.Name}
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := s.controllerFor(r.Context()); err != nil {
		s.htmlError(w, r, err)
		return
	}
	id := sanitizeInput(r.PathValue("id"))
	s.render(w, r, "confirm_delete.html", struct {
		ID      string
		ShortID string
		Action  string
	}{ID: id, ShortID: report.ShortID(id), Action: "/admin/expenses/" + url.PathEscape(id) + "/delete"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.controllerFor(ctx)
	if err != nil {
		s.htmlError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Malformed request").Write(w)
		return
	}
	confirmed := r.PostForm.Get("confirm") == "yes"
	id := sanitizeInput(r.PathValue("id"))

	err = c.Delete(ctx, id, report.ConfirmFunc(func(context.Context, string) bool { return confirmed }))
	switch {
	case err == nil, errors.Is(err, report.ErrDeleteCancelled):
		NewResponse().Redirect("/admin/expenses").Write(w)
	default:
		s.htmlError(w, r, err)
	}
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "signin.html", nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{
		"status":    "ok",
		"timestamp": s.cfg.Clock().Format(time.RFC3339),
		"uptime":    s.cfg.Clock().Sub(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"templates": "ok", "backend": "ok"}
	status, code := "ready", http.StatusOK

	if s.cfg.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.cfg.Ready(ctx); err != nil {
			checks["backend"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}

	NewResponse().Status(code).JSON(map[string]any{
		"status":             status,
		"checks":             checks,
		"active_controllers": s.controllers.Size(),
	}).Write(w)
}

// render executes a template into a buffer so a failure never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldOperation, applog.OpRender,
			"template", name,
			applog.FieldError, err)
		InternalServerError("Rendering failed").Write(w)
		return
	}
	NewResponse().BodyHTML(buf.String()).Write(w)
}

func (s *Server) htmlError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusUnauthorized {
		NewResponse().Redirect("/signin").Write(w)
		return
	}
	s.logError(r, code, err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "Something went wrong"
	}
	ErrorResponse(code, msg).Write(w)
}

func (s *Server) jsonError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	s.logError(r, code, err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	JSONError(code, msg).Write(w)
}

func (s *Server) logError(r *http.Request, code int, err error) {
	if code < http.StatusInternalServerError {
		return
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err)
}
