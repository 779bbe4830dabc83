package commands

import (
	"context"
	"errors"
	"log/slog"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// EscalateOrderCommandHandler raises an order's alert status when a stage
// deadline is crossed. Fired deadline tasks and the reconciler sweep both
// deliver their escalations through this handler, so the decision whether an
// alert still applies is made once, against the order's committed state.
//
// The order is re-read inside the transaction and the aggregate decides:
// a terminal order, a stage that has moved on, or an alert status already at
// or above the requested severity all make the escalation a silent no-op.
// Only a state change is persisted and only a persisted change produces an
// alert notification.
type EscalateOrderCommandHandler struct {
	uowFactory UoWFactory
	dispatcher ports.AlertDispatcher
	logger     *slog.Logger
}

// NewEscalateOrderCommandHandler creates a handler for deadline escalations.
func NewEscalateOrderCommandHandler(
	uowFactory UoWFactory,
	dispatcher ports.AlertDispatcher,
	logger *slog.Logger,
) EscalateOrderCommandHandler {
	return EscalateOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		logger:     logger.With("component", "escalate_order_handler"),
	}
}

// Handle processes the escalation command.
//
// A missing order, a stale escalation, and a lost write race all return nil:
// every one of them means the alert no longer applies, and escalation
// delivery is at-least-once, so dropping a stale attempt is the correct
// outcome. Only infrastructure failures surface as errors.
func (h EscalateOrderCommandHandler) Handle(ctx context.Context, cmd EscalateOrderCommand) error {
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
		h.logger.WarnContext(ctx, "Escalation target no longer exists",
			"order_id", cmd.OrderID().String())
		return nil
	}
	if err != nil {
		return err
	}

	changed, err := o.Escalate(cmd.Stage(), cmd.Severity())
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	st, storeErr := uow.StoreRepository().Get(ctx, o.StoreID())

	if err = orderRepo.Update(ctx, o); err != nil {
		if errors.Is(err, errs.ErrConcurrencyConflict) {
			// a stage transition or a competing escalation won the race;
			// its own alert handling supersedes this one
			h.logger.InfoContext(ctx, "Escalation lost write race, dropping",
				"order_id", o.ID().String(), "stage", cmd.Stage().String())
			return nil
		}
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		if errors.Is(err, errs.ErrConcurrencyConflict) {
			return nil
		}
		return err
	}

	h.notify(ctx, o, st, storeErr, cmd.Severity())
	return nil
}

// notify sends the alert for a committed escalation. Failures are logged and
// swallowed: the persisted alert status is the source of truth.
func (h EscalateOrderCommandHandler) notify(
	ctx context.Context,
	o *order.Order,
	st *store.Store,
	storeErr error,
	severity order.AlertStatus,
) {
	if storeErr != nil {
		h.logger.ErrorContext(ctx, "Failed to load store for escalation alert",
			"order_id", o.ID().String(), "store_id", o.StoreID().String(), "error", storeErr)
		return
	}

	if err := h.dispatcher.NotifyEscalation(ctx, o, st, severity); err != nil {
		h.logger.ErrorContext(ctx, "Failed to send escalation alert",
			"order_id", o.ID().String(), "severity", severity.String(), "error", err)
	}
}
