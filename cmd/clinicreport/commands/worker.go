package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clinicreport/internal/amqp"
	"clinicreport/internal/backend"
	"clinicreport/internal/cli"
	applog "clinicreport/internal/log"
	"clinicreport/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Record expense deletions from the message queue",
	Long: `Consume expense.deleted messages from AMQP and record each outcome in the
audit table of the SQL backend. Other backends log the outcomes instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorker(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(parent context.Context) error {
	cfg, logger, err := loadConfig(true)
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the worker")
	}
	ctx, stop := cli.SignalContext(parent)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg, nil)
	if err != nil {
		return err
	}
	// The worker only consumes.
	bcfg.AMQPURL = ""
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return fmt.Errorf("create %s backend: %w", cfg.DataBackend, err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}
	defer client.Close()

	logger.Info("Starting clinicreport worker",
		applog.FieldBackend, cfg.DataBackend,
		"queue", cfg.AMQPQueue)
	return worker.NewAuditWorker(res.Recorder, logger).Run(ctx, client)
}
