package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ErrStoreNotFound is returned when the order references an unknown store.
var ErrStoreNotFound = errors.New("store not found")

// CreateOrderCommandHandler registers new orders. The order starts at the
// awaiting-confirmation stage with a green alert status, and its stage
// deadlines are armed immediately after the commit from the store's time
// budget.
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	scheduler  DeadlineScheduler
	dispatcher ports.AlertDispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewCreateOrderCommandHandler creates a handler for order registration.
func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	scheduler DeadlineScheduler,
	dispatcher ports.AlertDispatcher,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		dispatcher: dispatcher,
		logger:     logger.With("component", "create_order_handler"),
		now:        time.Now,
	}
}

// Handle processes the order registration command.
//
// Returns ErrStoreNotFound when the referenced store does not exist and nil
// on success. Arming the deadlines and sending the order-received
// notification run after the commit and are best-effort: the reconciler
// sweep covers a missed deadline task, so a scheduling failure never fails
// the registration.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
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

	st, err := uow.StoreRepository().Get(ctx, cmd.StoreID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ErrStoreNotFound
	}
	if err != nil {
		return err
	}

	o, err := order.NewOrder(
		cmd.OrderID(),
		cmd.StoreID(),
		cmd.CustomerName(),
		cmd.PhoneNumber(),
		cmd.Items(),
		cmd.Total(),
		h.now(),
	)
	if err != nil {
		return err
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.runSideEffects(ctx, o, st)
	return nil
}

// runSideEffects arms the first stage's deadlines and announces the new
// order. Every failure here is logged and swallowed.
func (h CreateOrderCommandHandler) runSideEffects(ctx context.Context, o *order.Order, st *store.Store) {
	if err := h.scheduler.Rearm(ctx, o.ID(), o.Stage(), o.StoreID(), o.CreatedAt()); err != nil {
		h.logger.ErrorContext(ctx, "Failed to arm stage deadlines",
			"order_id", o.ID().String(), "stage", o.Stage().String(), "error", err)
	}

	if err := h.dispatcher.NotifyStageChange(ctx, o, st, order.StageUnknown, o.Stage()); err != nil {
		h.logger.ErrorContext(ctx, "Failed to send order-received notification",
			"order_id", o.ID().String(), "error", err)
	}
}

// WithClock replaces the handler's time source. Used by tests.
func (h CreateOrderCommandHandler) WithClock(now func() time.Time) CreateOrderCommandHandler {
	h.now = now
	return h
}
