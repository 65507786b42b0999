package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"clinicreport/internal/amqp"
	"clinicreport/internal/events"
	applog "clinicreport/internal/log"
	"clinicreport/internal/source"
)

// Publisher sends delete outcomes to the broker.
type Publisher interface {
	PublishExpenseDeleted(ctx context.Context, msg *amqp.ExpenseDeletedMessage) error
}

// ExpenseService orchestrates expense deletes across the backing source and AMQP
type ExpenseService struct {
	deleter   source.ExpenseDeleter
	publisher Publisher
	logger    *applog.Logger
}

// NewExpenseService builds the service. publisher may be nil, in which case
// delete outcomes stay in-process.
func NewExpenseService(deleter source.ExpenseDeleter, publisher Publisher, logger *applog.Logger) *ExpenseService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ExpenseService{
		deleter:   deleter,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentExpense),
	}
}

// DeleteExpense removes the record from the backing source.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.deleter.DeleteExpense(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "Delete rejected by source",
			applog.FieldExpenseID, id,
			applog.FieldError, err)
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Expense deleted", applog.FieldExpenseID, id)
	return nil
}

// OnDeleteCompleted forwards a delete outcome to the broker. Publish failures
// are logged only; the delete itself already happened.
func (s *ExpenseService) OnDeleteCompleted(ctx context.Context, ev events.DeleteCompleted) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not available, skipping delete message",
			applog.FieldExpenseID, ev.ID)
		return
	}
	if err := s.publisher.PublishExpenseDeleted(ctx, amqp.NewExpenseDeletedMessage(ev)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish delete message",
			applog.FieldExpenseID, ev.ID,
			applog.FieldError, err)
	}
}

// Subscribe attaches the forwarder to bus and returns the unsubscribe func.
func (s *ExpenseService) Subscribe(bus *events.Bus) func() {
	return bus.SubscribeDeletes(s.OnDeleteCompleted)
}

// Close closes the publisher and the deleter when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error

	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if c, ok := s.deleter.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("source: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close expense service: %w", err)
	}
	return nil
}
