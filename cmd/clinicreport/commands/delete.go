package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clinicreport/internal/cli"
	"clinicreport/internal/events"
	"clinicreport/internal/report"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <expense-id>",
	Short: "Delete one expense",
	Long: `Delete an expense after confirmation. The outcome is published like a delete
from the web report, so the audit worker records it when AMQP is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd.Context(), args[0], os.Stdin, os.Stdout)
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

// promptConfirmer asks on out and reads a y/yes answer from in.
func promptConfirmer(in io.Reader, out io.Writer) report.ConfirmFunc {
	return func(_ context.Context, prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func runDelete(parent context.Context, id string, in io.Reader, out io.Writer) error {
	cfg, logger, err := loadConfig(true)
	if err != nil {
		return err
	}
	ctx, stop := cli.SignalContext(parent)
	defer stop()

	c, bus, cleanup, err := openController(ctx, cfg, logger, "", 0)
	if err != nil {
		return err
	}
	defer cleanup()

	var outcome *events.DeleteCompleted
	unsubscribe := bus.SubscribeDeletes(func(_ context.Context, ev events.DeleteCompleted) {
		if ev.ID == id {
			outcome = &ev
		}
	})
	defer unsubscribe()

	var confirm report.Confirmer = promptConfirmer(in, out)
	if deleteYes {
		confirm = report.ConfirmFunc(func(context.Context, string) bool { return true })
	}

	if err := c.Delete(ctx, id, confirm); err != nil {
		if errors.Is(err, report.ErrDeleteCancelled) {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}
		return err
	}
	if outcome != nil && !outcome.OK() {
		return fmt.Errorf("delete %s: %w", report.ShortID(id), outcome.Err)
	}
	fmt.Fprintf(out, "Deleted expense %s\n", report.ShortID(id))
	return nil
}
