package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// CancelOrderCommandHandler handles order cancellation.
//
// Cancellation is itself a terminal transition: it runs through the same
// atomic read-modify-write as advancing, records the reason, clears the
// batch number and delivery man assignment, and — after the commit —
// proactively cancels all pending deadline tasks for the order. Any task
// that still fires afterwards finds the order at the Cancelled stage and
// no-ops.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	scheduler  DeadlineScheduler
	dispatcher ports.AlertDispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	scheduler DeadlineScheduler,
	dispatcher ports.AlertDispatcher,
	logger *slog.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		dispatcher: dispatcher,
		logger:     logger.With("component", "cancel_order_handler"),
		now:        time.Now,
	}
}

// Handle processes the cancellation command.
//
// Returns ErrOrderNotFound for unknown orders and nil on success.
// A repeated cancel and a cancel of a delivered order both succeed without
// mutation; ErrStageConflict is returned only when the conditional write
// lost a race and the operator should retry against fresh state.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}

	fromStage := o.Stage()

	changed, err := o.Cancel(cmd.Reason(), h.now())
	if errors.Is(err, order.ErrOrderIsTerminal) {
		// delivered orders cannot be cancelled; idempotent no-op
		return nil
	}
	if err != nil {
		return err
	}
	if !changed {
		// already cancelled
		return nil
	}

	st, storeErr := uow.StoreRepository().Get(ctx, o.StoreID())

	if err = orderRepo.Update(ctx, o); err != nil {
		if errors.Is(err, errs.ErrConcurrencyConflict) {
			return ErrStageConflict
		}
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		if errors.Is(err, errs.ErrConcurrencyConflict) {
			return ErrStageConflict
		}
		return err
	}

	if err := h.scheduler.CancelAll(ctx, o.ID()); err != nil {
		h.logger.ErrorContext(ctx, "Failed to cancel deadline tasks",
			"order_id", o.ID().String(), "error", err)
	}

	if storeErr != nil {
		h.logger.ErrorContext(ctx, "Failed to load store for cancellation notification",
			"order_id", o.ID().String(), "store_id", o.StoreID().String(), "error", storeErr)
		return nil
	}

	if err := h.dispatcher.NotifyStageChange(ctx, o, st, fromStage, order.Cancelled); err != nil {
		h.logger.ErrorContext(ctx, "Failed to send cancellation notification",
			"order_id", o.ID().String(), "error", err)
	}

	return nil
}

// WithClock replaces the handler's time source. Used by tests.
func (h CancelOrderCommandHandler) WithClock(now func() time.Time) CancelOrderCommandHandler {
	h.now = now
	return h
}
