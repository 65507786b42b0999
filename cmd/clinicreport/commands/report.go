package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clinicreport/internal/backend"
	"clinicreport/internal/cli"
	"clinicreport/internal/config"
	"clinicreport/internal/events"
	applog "clinicreport/internal/log"
	"clinicreport/internal/report"
	"clinicreport/internal/session"
)

var reportFlags struct {
	doctor   string
	from     string
	to       string
	page     int
	pageSize int
	scope    string
	asJSON   bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the expense report",
	Long: `Fetch one page of expenses with the given filters and print the table and the
daily earnings chart. Dates accept YYYY-MM-DD or RFC 3339; both --from and
--to must be given for the range to apply.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context())
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFlags.doctor, "doctor", "", "only show expenses of this doctor id")
	f.StringVar(&reportFlags.from, "from", "", "first day of the range")
	f.StringVar(&reportFlags.to, "to", "", "last day of the range")
	f.IntVar(&reportFlags.page, "page", report.DefaultPage, "page number")
	f.IntVar(&reportFlags.pageSize, "page-size", 0, "page size, one of 10, 20 or 50 (default DEFAULT_PAGE_SIZE)")
	f.StringVar(&reportFlags.scope, "scope", "", "chart scope: page or window (default CHART_SCOPE)")
	f.BoolVar(&reportFlags.asJSON, "json", false, "print the view as JSON")
	rootCmd.AddCommand(reportCmd)
}

// operator is the session terminal commands run under.
var operator = session.Static{Session: session.Session{UserID: cli.DevUserID, Name: "Operator"}}

// openController builds a backend and a controller on top of it. The
// returned cleanup closes both.
func openController(ctx context.Context, cfg *config.Config, logger *applog.Logger, scopeFlag string, pageSize int) (*report.Controller, *events.Bus, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, nil, err
	}
	if scopeFlag == "" {
		scopeFlag = cfg.ChartScope
	}
	scope, err := report.ParseChartScope(scopeFlag)
	if err != nil {
		return nil, nil, nil, err
	}
	if pageSize == 0 {
		pageSize = cfg.DefaultPageSize
	}

	bus := events.NewBus()
	bcfg, err := backend.FromAppConfig(cfg, bus)
	if err != nil {
		return nil, nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create %s backend: %w", cfg.DataBackend, err)
	}

	c, err := report.NewController(report.Deps{
		Source:     res.Source,
		Sessions:   operator,
		Events:     bus,
		Normalizer: report.Normalizer{Location: loc},
		ChartScope: scope,
		Pagination: report.Pagination{Page: report.DefaultPage, PageSize: pageSize},
		Logger:     logger,
	})
	if err != nil {
		_ = res.Cleanup()
		return nil, nil, nil, err
	}
	cleanup := func() {
		c.Close()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}
	return c, bus, cleanup, nil
}

func runReport(parent context.Context) error {
	cfg, logger, err := loadConfig(true)
	if err != nil {
		return err
	}
	ctx, stop := cli.SignalContext(parent)
	defer stop()

	c, _, cleanup, err := openController(ctx, cfg, logger, reportFlags.scope, reportFlags.pageSize)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := c.Mount(ctx); err != nil {
		return err
	}
	if reportFlags.from != "" || reportFlags.to != "" || reportFlags.doctor != "" {
		err := c.ApplyFilters(ctx, report.PendingFilter{
			Start:    reportFlags.from,
			End:      reportFlags.to,
			DoctorID: reportFlags.doctor,
		})
		if err != nil {
			return err
		}
	}
	if reportFlags.page != report.DefaultPage {
		if err := c.ChangePage(ctx, reportFlags.page, c.Snapshot().Pagination.PageSize); err != nil {
			return err
		}
	}

	view := c.Snapshot()
	if reportFlags.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	if err := printView(os.Stdout, view); err != nil {
		return err
	}
	if view.Error != "" {
		return fmt.Errorf("fetch expenses: %s", view.Error)
	}
	return nil
}
