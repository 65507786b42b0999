package worker

import (
	"context"
	"fmt"
	"time"

	"clinicreport/internal/amqp"
	applog "clinicreport/internal/log"
	"clinicreport/internal/storage"
)

// Recorder persists audited delete attempts.
type Recorder interface {
	RecordDeletion(ctx context.Context, d storage.Deletion) error
}

// Consumer delivers expense.deleted messages to a handler until ctx ends.
type Consumer interface {
	ConsumeExpenseDeleted(ctx context.Context, handler amqp.Handler) error
}

// AuditWorker turns expense.deleted messages into audit entries.
type AuditWorker struct {
	recorder Recorder
	logger   *applog.Logger
	now      func() time.Time
}

func NewAuditWorker(recorder Recorder, logger *applog.Logger) *AuditWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &AuditWorker{
		recorder: recorder,
		logger:   logger.WithComponent(applog.ComponentWorker),
		now:      time.Now,
	}
}

// HandleDeleteMessage records one delete outcome. A returned error makes the
// consumer requeue the message; the recorder ignores replays.
func (w *AuditWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.ExpenseDeletedMessage) error {
	w.logger.InfoContext(ctx, "Processing delete message",
		applog.FieldOperation, applog.OpAudit,
		applog.FieldExpenseID, msg.ID,
		applog.FieldSuccess, msg.OK)

	d := storage.Deletion{
		ID:         msg.MessageID,
		ExpenseID:  msg.ID,
		OK:         msg.OK,
		Error:      msg.Error,
		OccurredAt: msg.Timestamp,
		RecordedAt: w.now(),
	}
	if err := w.recorder.RecordDeletion(ctx, d); err != nil {
		return fmt.Errorf("record deletion of %s: %w", msg.ID, err)
	}
	return nil
}

// Run consumes until ctx is cancelled. Cancellation is not an error.
func (w *AuditWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Audit worker started")
	err := consumer.ConsumeExpenseDeleted(ctx, w.HandleDeleteMessage)
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Audit worker stopped")
		return nil
	}
	return err
}

// LogRecorder writes audit entries to the log. It serves backends without
// an audit table.
type LogRecorder struct {
	logger *applog.Logger
}

func NewLogRecorder(logger *applog.Logger) *LogRecorder {
	if logger == nil {
		logger = applog.Discard()
	}
	return &LogRecorder{logger: logger.WithComponent(applog.ComponentWorker)}
}

func (r *LogRecorder) RecordDeletion(ctx context.Context, d storage.Deletion) error {
	args := []any{
		"message_id", d.ID,
		applog.FieldExpenseID, d.ExpenseID,
		applog.FieldSuccess, d.OK,
		"occurred_at", d.OccurredAt.Format(time.RFC3339),
	}
	if d.Error != "" {
		args = append(args, applog.FieldError, d.Error)
	}
	r.logger.InfoContext(ctx, "Expense delete audited", args...)
	return nil
}
