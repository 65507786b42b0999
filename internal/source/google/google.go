// Package google serves expenses straight from a Google Sheets spreadsheet.
// The whole sheet is read on every call and filtered in process, which is
// fine for the few thousand rows a clinic keeps per sheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"clinicreport/internal/core"
	applog "clinicreport/internal/log"
	"clinicreport/internal/source"
)

type Config struct {
	SpreadsheetID   string
	ExpensesSheet   string
	DoctorsSheet    string
	CredentialsJSON string
	CredentialsFile string
	Location        *time.Location
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
	doctorsSheet  string
	loc           *time.Location
	logger        *applog.Logger
}

var _ source.Source = (*Client)(nil)

func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, cfg, logger), nil
}

func newClient(svc *gsheet.Service, cfg Config, logger *applog.Logger) *Client {
	c := &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		expensesSheet: cfg.ExpensesSheet,
		doctorsSheet:  cfg.DoctorsSheet,
		loc:           cfg.Location,
		logger:        logger,
	}
	if c.expensesSheet == "" {
		c.expensesSheet = "Expenses"
	}
	if c.doctorsSheet == "" {
		c.doctorsSheet = "Doctors"
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	return c
}

// newSheetsService authenticates with a service account, inline JSON first.
func newSheetsService(ctx context.Context, cfg Config, logger *applog.Logger) (*gsheet.Service, error) {
	var credentials []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentials = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	logger.InfoContext(ctx, "Creating Google Sheets service", "credentials_size", len(credentials))
	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func (c *Client) ListExpenses(ctx context.Context, p source.ListParams) (source.Page, error) {
	values, err := c.read(ctx, c.expensesSheet+"!A:K")
	if err != nil {
		return source.Page{}, err
	}
	records, skipped := parseExpenseRows(values, c.loc)
	if skipped > 0 {
		c.logger.DebugContext(ctx, "Skipped unparsable expense rows", "skipped", skipped)
	}
	return source.Apply(records, p, c.loc)
}

func (c *Client) ListDoctors(ctx context.Context) ([]core.Doctor, error) {
	values, err := c.read(ctx, c.doctorsSheet+"!A:C")
	if err != nil {
		return nil, err
	}
	return parseDoctorRows(values), nil
}

// DeleteExpense removes the sheet row holding id.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	ids, err := c.read(ctx, c.expensesSheet+"!A:A")
	if err != nil {
		return err
	}
	row := rowOf(ids, id)
	if row < 0 {
		return source.ErrNotFound
	}

	sheetID, err := c.sheetID(ctx, c.expensesSheet)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row),
					EndIndex:   int64(row + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", row+1, c.expensesSheet, err)
	}
	c.logger.InfoContext(ctx, "Deleted expense row",
		applog.FieldExpenseID, id,
		"row", row+1)
	return nil
}

// Ping reads the spreadsheet metadata.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	return err
}

func (c *Client) read(ctx context.Context, rng string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", title)
}
