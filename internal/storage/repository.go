// Package storage is the SQL expense source. The same queries run on SQLite
// (modernc) and Postgres (pgx); only placeholders differ. Instants are kept
// as unix milliseconds so range filters compare integers on both engines.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"clinicreport/internal/core"
	applog "clinicreport/internal/log"
	"clinicreport/internal/source"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) Validate() error {
	switch d {
	case DialectSQLite, DialectPostgres:
		return nil
	}
	return fmt.Errorf("unsupported sql dialect %q", d)
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// placeholder returns the n-th (1-based) bind marker.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

type Options struct {
	Dialect  Dialect
	DSN      string
	Location *time.Location
	// Migrate applies pending migrations before the repository is returned.
	Migrate bool
}

type Repository struct {
	db      *sql.DB
	dialect Dialect
	loc     *time.Location
	logger  *applog.Logger
}

var _ source.Source = (*Repository)(nil)

func Open(ctx context.Context, opts Options, logger *applog.Logger) (*Repository, error) {
	if err := opts.Dialect.Validate(); err != nil {
		return nil, err
	}
	if opts.Dialect == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(opts.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(opts.Dialect.driverName(), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if opts.Migrate {
		if err := RunMigrations(opts.Dialect, opts.DSN); err != nil {
			db.Close()
			return nil, err
		}
	}
	return NewRepository(db, opts.Dialect, opts.Location, logger), nil
}

func NewRepository(db *sql.DB, dialect Dialect, loc *time.Location, logger *applog.Logger) *Repository {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Repository{
		db:      db,
		dialect: dialect,
		loc:     loc,
		logger:  logger.WithComponent(applog.ComponentStorage),
	}
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// args collects bind values and hands out matching placeholders.
type args struct {
	dialect Dialect
	values  []any
}

func (a *args) add(v any) string {
	a.values = append(a.values, v)
	return a.dialect.placeholder(len(a.values))
}

const expenseColumns = `e.id, e.doctor_id, COALESCE(u.name, ''), e.patient_id, e.patient_first_name,
	e.patient_last_name, e.patient_number, e.created_at, e.total_cost_cents,
	e.grand_total_cents, e.paid, e.payment_method`

func (r *Repository) ListExpenses(ctx context.Context, p source.ListParams) (source.Page, error) {
	if err := p.Validate(); err != nil {
		return source.Page{}, err
	}
	from, to, err := p.DayBounds(r.loc)
	if err != nil {
		return source.Page{}, err
	}

	a := &args{dialect: r.dialect}
	where := []string{"e.deleted_at IS NULL"}
	if p.DoctorID != "" {
		where = append(where, "e.doctor_id = "+a.add(p.DoctorID))
	}
	if !from.IsZero() {
		where = append(where, "e.created_at >= "+a.add(from.UnixMilli()))
	}
	if !to.IsZero() {
		where = append(where, "e.created_at < "+a.add(to.UnixMilli()))
	}
	whereSQL := " WHERE " + strings.Join(where, " AND ")

	var total int
	countSQL := "SELECT COUNT(*) FROM expenses e" + whereSQL
	if err := r.db.QueryRowContext(ctx, countSQL, a.values...).Scan(&total); err != nil {
		return source.Page{}, fmt.Errorf("count expenses: %w", err)
	}

	query := "SELECT " + expenseColumns + " FROM expenses e LEFT JOIN users u ON u.id = e.doctor_id" +
		whereSQL + " ORDER BY e.created_at DESC, e.id ASC"
	query += fmt.Sprintf(" LIMIT %s OFFSET %s", a.add(p.PageSize), a.add(p.Offset()))

	rows, err := r.db.QueryContext(ctx, query, a.values...)
	if err != nil {
		return source.Page{}, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	records := make([]core.ExpenseRecord, 0, p.PageSize)
	for rows.Next() {
		var (
			e         core.ExpenseRecord
			createdAt int64
			method    string
		)
		if err := rows.Scan(&e.ID, &e.Doctor.ID, &e.Doctor.Name, &e.Patient.ID, &e.Patient.FirstName,
			&e.Patient.LastName, &e.Patient.PatientNumber, &createdAt, &e.TotalCost.Cents,
			&e.GrandTotal.Cents, &e.Paid, &method); err != nil {
			return source.Page{}, fmt.Errorf("scan expense: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdAt).In(r.loc)
		e.PaymentMethod = core.ParsePaymentMethod(method)
		records = append(records, e)
	}
	if err := rows.Err(); err != nil {
		return source.Page{}, fmt.Errorf("iterate expenses: %w", err)
	}

	r.logger.DebugContext(ctx, "Listed expenses",
		applog.NewFields().
			WithOperation(applog.OpList).
			WithQuery(p.Page, p.PageSize, p.DoctorID, p.StartDate, p.EndDate).
			ToSlice()...)

	return source.Page{Records: records, TotalCount: total}, nil
}

// DeleteExpense soft-deletes id. Deleted rows are excluded from listings.
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	a := &args{dialect: r.dialect}
	query := "UPDATE expenses SET deleted_at = " + a.add(time.Now().UnixMilli()) +
		" WHERE id = " + a.add(id) + " AND deleted_at IS NULL"

	res, err := r.db.ExecContext(ctx, query, a.values...)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return source.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Expense soft-deleted", applog.FieldExpenseID, id)
	return nil
}

func (r *Repository) ListDoctors(ctx context.Context) ([]core.Doctor, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, role FROM users ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []core.Doctor
	for rows.Next() {
		var d core.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// InsertExpense stores a record as-is. A record whose id already exists is
// left untouched, so imports can be rerun.
func (r *Repository) InsertExpense(ctx context.Context, e core.ExpenseRecord) error {
	if err := e.Validate(); err != nil {
		return err
	}
	a := &args{dialect: r.dialect}
	cols := []string{
		a.add(e.ID), a.add(e.Doctor.ID), a.add(e.Patient.ID), a.add(e.Patient.FirstName),
		a.add(e.Patient.LastName), a.add(e.Patient.PatientNumber), a.add(e.CreatedAt.UnixMilli()),
		a.add(e.TotalCost.Cents), a.add(e.GrandTotal.Cents), a.add(e.Paid), a.add(e.PaymentMethod.String()),
	}
	query := `INSERT INTO expenses (id, doctor_id, patient_id, patient_first_name, patient_last_name,
		patient_number, created_at, total_cost_cents, grand_total_cents, paid, payment_method)
		VALUES (` + strings.Join(cols, ", ") + ") ON CONFLICT (id) DO NOTHING"
	if _, err := r.db.ExecContext(ctx, query, a.values...); err != nil {
		return fmt.Errorf("insert expense %s: %w", e.ID, err)
	}
	return nil
}

func (r *Repository) UpsertUser(ctx context.Context, d core.Doctor) error {
	a := &args{dialect: r.dialect}
	query := "INSERT INTO users (id, name, role) VALUES (" +
		a.add(d.ID) + ", " + a.add(d.Name) + ", " + a.add(d.Role) +
		") ON CONFLICT (id) DO UPDATE SET name = excluded.name, role = excluded.role"
	if _, err := r.db.ExecContext(ctx, query, a.values...); err != nil {
		return fmt.Errorf("upsert user %s: %w", d.ID, err)
	}
	return nil
}

// Deletion is one audited delete attempt.
type Deletion struct {
	ID         string
	ExpenseID  string
	OK         bool
	Error      string
	OccurredAt time.Time
	RecordedAt time.Time
}

// RecordDeletion appends to the audit table. Replays of the same message id
// are ignored.
func (r *Repository) RecordDeletion(ctx context.Context, d Deletion) error {
	if d.ID == "" || d.ExpenseID == "" {
		return errors.New("deletion requires id and expense id")
	}
	if d.RecordedAt.IsZero() {
		d.RecordedAt = time.Now()
	}
	a := &args{dialect: r.dialect}
	query := "INSERT INTO expense_deletions (id, expense_id, ok, error, occurred_at, recorded_at) VALUES (" +
		strings.Join([]string{
			a.add(d.ID), a.add(d.ExpenseID), a.add(d.OK), a.add(d.Error),
			a.add(d.OccurredAt.UnixMilli()), a.add(d.RecordedAt.UnixMilli()),
		}, ", ") + ") ON CONFLICT (id) DO NOTHING"
	if _, err := r.db.ExecContext(ctx, query, a.values...); err != nil {
		return fmt.Errorf("record deletion: %w", err)
	}
	return nil
}

// Deletions returns audit entries for expenseID, oldest first.
func (r *Repository) Deletions(ctx context.Context, expenseID string) ([]Deletion, error) {
	a := &args{dialect: r.dialect}
	query := "SELECT id, expense_id, ok, error, occurred_at, recorded_at FROM expense_deletions WHERE expense_id = " +
		a.add(expenseID) + " ORDER BY occurred_at, id"
	rows, err := r.db.QueryContext(ctx, query, a.values...)
	if err != nil {
		return nil, fmt.Errorf("list deletions: %w", err)
	}
	defer rows.Close()

	var out []Deletion
	for rows.Next() {
		var (
			d                    Deletion
			occurred, recordedAt int64
		)
		if err := rows.Scan(&d.ID, &d.ExpenseID, &d.OK, &d.Error, &occurred, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan deletion: %w", err)
		}
		d.OccurredAt = time.UnixMilli(occurred).In(r.loc)
		d.RecordedAt = time.UnixMilli(recordedAt).In(r.loc)
		out = append(out, d)
	}
	return out, rows.Err()
}
