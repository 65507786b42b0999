package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	applog "clinicreport/internal/log"
	"clinicreport/internal/source/memory"
	"clinicreport/internal/storage"
)

var migrateSeed string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply pending migrations to the SQL backend selected by DATA_BACKEND.
The serve command also migrates on startup; this is for deploys that run
migrations as a separate step.

With --seed, users and expenses from a JSON seed file (the format the memory
backend reads) are imported afterwards. Expenses already present are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(true)
		if err != nil {
			return err
		}

		var dialect storage.Dialect
		var dsn string
		switch cfg.DataBackend {
		case "sqlite":
			dialect, dsn = storage.DialectSQLite, cfg.SQLiteDBPath
		case "postgres":
			dialect, dsn = storage.DialectPostgres, cfg.DatabaseURL
		default:
			return fmt.Errorf("backend %q has no database to migrate", cfg.DataBackend)
		}

		if err := storage.RunMigrations(dialect, dsn); err != nil {
			return err
		}
		logger.Info("Migrations applied",
			applog.FieldOperation, applog.OpMigrate,
			applog.FieldDialect, dialect)

		if migrateSeed == "" {
			return nil
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		seed, err := memory.NewFromFile(migrateSeed, loc)
		if err != nil {
			return err
		}
		if seed.Len() == 0 {
			return fmt.Errorf("seed file %s is missing or has no expenses", migrateSeed)
		}

		ctx := cmd.Context()
		repo, err := storage.Open(ctx, storage.Options{Dialect: dialect, DSN: dsn, Location: loc}, logger)
		if err != nil {
			return err
		}
		defer repo.Close()

		n, err := repo.Import(ctx, seed)
		if err != nil {
			return fmt.Errorf("import %s: %w", migrateSeed, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d expenses from %s\n", n, migrateSeed)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSeed, "seed", "", "JSON seed file to import after migrating")
	rootCmd.AddCommand(migrateCmd)
}
