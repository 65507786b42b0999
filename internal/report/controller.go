package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinicreport/internal/core"
	"clinicreport/internal/events"
	applog "clinicreport/internal/log"
	"clinicreport/internal/session"
	"clinicreport/internal/source"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrDeleteCancelled = errors.New("delete not confirmed")
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Deps are the collaborators of a Controller. Source and Sessions are
// required; Doctors defaults to Source and Events to a private bus.
type Deps struct {
	Source     source.Source
	Doctors    source.DoctorLister
	Sessions   session.Provider
	Events     *events.Bus
	Clock      func() time.Time
	Normalizer Normalizer
	ChartScope ChartScope
	Pagination Pagination
	Logger     *applog.Logger
}

// View is an immutable copy of the controller state.
type View struct {
	State      State                `json:"state"`
	Filter     FilterState          `json:"filter"`
	Pagination Pagination           `json:"pagination"`
	TotalCount int                  `json:"totalCount"`
	TotalPages int                  `json:"totalPages"`
	Records    []core.ExpenseRecord `json:"-"`
	Rows       []Row                `json:"rows"`
	Chart      Chart                `json:"chart"`
	ChartTitle string               `json:"chartTitle"`
	ChartScope ChartScope           `json:"chartScope"`
	Error      string               `json:"error,omitempty"`
	Empty      bool                 `json:"empty"`
	Sequence   uint64               `json:"sequence"`
}

// Controller owns the filter, pagination and fetched snapshot of one
// report view. Every trigger takes a new sequence number and only the
// response carrying the latest number is committed.
type Controller struct {
	origin string
	deps   Deps
	loc    *time.Location
	logger *applog.Logger

	unsubscribe func()

	mu      sync.Mutex
	seq     uint64
	state   State
	filter  FilterState
	page    Pagination
	records []core.ExpenseRecord
	total   int
	chart   Chart
	errMsg  string
	// settled is closed when the latest dispatch commits.
	settled chan struct{}
}

func NewController(deps Deps) (*Controller, error) {
	if deps.Source == nil {
		return nil, errors.New("report: source is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("report: session provider is required")
	}
	if deps.Doctors == nil {
		deps.Doctors = deps.Source
	}
	if deps.Events == nil {
		deps.Events = events.NewBus()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.ChartScope == "" {
		deps.ChartScope = ScopePage
	}
	if deps.Pagination == (Pagination{}) {
		deps.Pagination = DefaultPagination()
	}
	if err := deps.Pagination.Validate(); err != nil {
		return nil, fmt.Errorf("report: initial pagination: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = applog.Discard()
	}

	c := &Controller{
		origin: uuid.NewString(),
		deps:   deps,
		loc:    deps.Normalizer.location(),
		logger: deps.Logger.WithComponent(applog.ComponentReport),
		page:   deps.Pagination,
	}
	c.chart = Aggregate(nil, c.today())
	c.unsubscribe = deps.Events.SubscribeDeletes(c.onDeleteCompleted)
	return c, nil
}

// Close detaches the controller from the event bus.
func (c *Controller) Close() {
	c.unsubscribe()
}

func (c *Controller) Mount(ctx context.Context) error {
	return c.dispatch(ctx, applog.OpMount, nil)
}

// Refresh refetches with the current filter and pagination.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.dispatch(ctx, applog.OpFetch, nil)
}

// ApplyFilters normalizes and applies a filter selection and returns to the
// first page. The page size is kept.
func (c *Controller) ApplyFilters(ctx context.Context, pf PendingFilter) error {
	return c.dispatch(ctx, applog.OpApply, func() error {
		rng, err := c.deps.Normalizer.Normalize(pf.Start, pf.End)
		if err != nil {
			return err
		}
		f := FilterState{Range: rng, DoctorID: strings.TrimSpace(pf.DoctorID)}
		if err := f.Validate(); err != nil {
			return err
		}
		c.filter = f
		c.page.Page = DefaultPage
		return nil
	})
}

// ChangePage moves to another page or page size with the filters unchanged.
func (c *Controller) ChangePage(ctx context.Context, page, pageSize int) error {
	return c.dispatch(ctx, applog.OpPaginate, func() error {
		p := Pagination{Page: page, PageSize: pageSize}
		if err := p.Validate(); err != nil {
			return err
		}
		c.page = p
		return nil
	})
}

// Delete removes one record after confirmation. The outcome is published
// as a DeleteCompleted event, which makes this controller refetch; a failed
// delete is only logged and shows up as the record still being listed.
func (c *Controller) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if err := c.authorize(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.ErrEmptyID
	}
	prompt := fmt.Sprintf("Delete expense %s? This cannot be undone.", ShortID(id))
	if confirm == nil || !confirm.Confirm(ctx, prompt) {
		return ErrDeleteCancelled
	}

	err := c.deps.Source.DeleteExpense(ctx, id)
	if err != nil {
		c.logger.WarnContext(ctx, "Delete failed",
			applog.FieldExpenseID, id,
			applog.FieldError, err)
	} else {
		c.logger.InfoContext(ctx, "Expense deleted", applog.FieldExpenseID, id)
	}

	c.deps.Events.PublishDelete(ctx, events.DeleteCompleted{
		ID:     id,
		Err:    err,
		At:     c.deps.Clock(),
		Origin: c.origin,
	})
	return nil
}

func (c *Controller) onDeleteCompleted(ctx context.Context, ev events.DeleteCompleted) {
	if ev.Origin != c.origin {
		return
	}
	if err := c.dispatch(ctx, applog.OpDelete, nil); err != nil {
		c.logger.WarnContext(ctx, "Refetch after delete skipped", applog.FieldError, err)
	}
}

// Doctors returns the options for the doctor filter.
func (c *Controller) Doctors(ctx context.Context) ([]core.Doctor, error) {
	if err := c.authorize(ctx); err != nil {
		return nil, err
	}
	users, err := c.deps.Doctors.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return core.DoctorsOnly(users), nil
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := append([]core.ExpenseRecord(nil), c.records...)
	return View{
		State:      c.state,
		Filter:     c.filter,
		Pagination: c.page,
		TotalCount: c.total,
		TotalPages: c.page.TotalPages(c.total),
		Records:    records,
		Rows:       Rows(records, c.loc),
		Chart:      c.chart,
		ChartTitle: ChartTitle,
		ChartScope: c.deps.ChartScope,
		Error:      c.errMsg,
		Empty:      c.state == StateLoaded && len(records) == 0,
		Sequence:   c.seq,
	}
}

func (c *Controller) authorize(ctx context.Context) error {
	if _, err := c.deps.Sessions.Current(ctx); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("session lookup: %w", err)
	}
	return nil
}

// dispatch checks the session, applies mutate under the lock, derives the
// query from the resulting state and fetches. A mutate error leaves the
// state untouched and nothing is fetched.
func (c *Controller) dispatch(ctx context.Context, op string, mutate func() error) error {
	if err := c.authorize(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	prevFilter, prevPage := c.filter, c.page
	if mutate != nil {
		if err := mutate(); err != nil {
			c.filter, c.page = prevFilter, prevPage
			c.mu.Unlock()
			return err
		}
	}
	c.seq++
	seq := c.seq
	filter := c.filter
	params := BuildQuery(c.filter, c.page)
	c.state = StateLoading
	if c.settled == nil {
		c.settled = make(chan struct{})
	}
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "Fetching expenses",
		append(applog.NewFields().
			WithOperation(op).
			WithQuery(params.Page, params.PageSize, params.DoctorID, params.StartDate, params.EndDate).
			ToSlice(), applog.FieldSequence, seq)...)

	today := c.today()
	page, err := c.deps.Source.ListExpenses(ctx, params)
	var chart Chart
	if err == nil {
		chart, err = c.chartFor(ctx, page.Records, filter.DoctorID, today)
	}

	c.mu.Lock()
	if seq != c.seq {
		latest, settled := c.seq, c.settled
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "Discarding stale response",
			applog.FieldSequence, seq,
			"latest", latest)
		return waitSettled(ctx, settled)
	}
	defer c.mu.Unlock()
	defer c.settle()

	if err != nil {
		c.logger.WarnContext(ctx, "Fetch failed",
			applog.FieldOperation, op,
			applog.FieldSequence, seq,
			applog.FieldError, err)
		c.state = StateError
		c.errMsg = err.Error()
		c.records = nil
		c.total = 0
		c.chart = Aggregate(nil, today)
		return nil
	}

	c.state = StateLoaded
	c.errMsg = ""
	c.records = page.Records
	c.total = page.TotalCount
	c.chart = chart
	c.logger.DebugContext(ctx, "Expenses fetched",
		applog.FieldSequence, seq,
		applog.FieldTotalCount, page.TotalCount)
	return nil
}

// settle releases callers whose dispatch was superseded. c.mu must be held.
func (c *Controller) settle() {
	if c.settled != nil {
		close(c.settled)
		c.settled = nil
	}
}

// waitSettled blocks a superseded dispatch until the newest one commits, so
// its caller never observes the loading state.
func waitSettled(ctx context.Context, settled <-chan struct{}) error {
	if settled == nil {
		return nil
	}
	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) chartFor(ctx context.Context, records []core.ExpenseRecord, doctorID string, today time.Time) (Chart, error) {
	if c.deps.ChartScope != ScopeWindow {
		return Aggregate(records, today), nil
	}
	all, err := CollectWindow(ctx, c.deps.Source, doctorID, today)
	if err != nil {
		return Chart{}, fmt.Errorf("chart window: %w", err)
	}
	return Aggregate(all, today), nil
}

func (c *Controller) today() time.Time {
	return c.deps.Clock().In(c.loc)
}
