package commands

import (
	"github.com/spf13/cobra"

	"clinicreport/internal/cli"
	"clinicreport/internal/config"
	applog "clinicreport/internal/log"
)

var envFiles []string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clinicreport",
	Short: "Clinic expense report",
	Long: `clinicreport serves the clinic's expense report: a filterable, paginated
table of billing transactions with a rolling seven day earnings chart.

Besides the web server it can print the report on the terminal, delete an
expense, run the delete audit worker and apply database migrations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cli.LoadEnvFile(envFiles...)
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load before reading configuration (default .env)")
}

// loadConfig reads and validates the environment configuration and sets up
// logging. Terminal commands run as a trusted operator and do not need a
// session store.
func loadConfig(trusted bool) (*config.Config, *applog.Logger, error) {
	cfg := config.Load()
	if trusted {
		cfg.DevSession = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, cli.SetupLogger(cfg.LogLevel), nil
}
