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

var (
	// ErrOrderNotFound is returned when the order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrStageConflict is returned when a transition lost the race to a
	// concurrent caller: the order's stage no longer matches the stage the
	// caller observed. The caller may retry with fresh state.
	ErrStageConflict = errors.New("order stage changed concurrently")
)

// AdvanceOrderCommandHandler is the transactional stage-transition side of
// the workflow state machine.
//
// The transition itself is one atomic read-modify-write: the order is
// re-read inside the transaction, the fromStage fence is checked, the
// completed stage is appended to the history, and the write is conditional
// on the aggregate version. Exactly one of a racing pair of callers commits;
// the other receives ErrStageConflict.
//
// Side effects run after the commit and are best-effort: re-arming the
// stage deadlines and notifying the customer and store are logged on
// failure and never affect the transition outcome — the committed
// transition is the source of truth and is never rolled back because a
// notification failed.
type AdvanceOrderCommandHandler struct {
	uowFactory UoWFactory
	scheduler  DeadlineScheduler
	dispatcher ports.AlertDispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewAdvanceOrderCommandHandler creates a handler for stage transitions.
// Requires a UoWFactory for the atomic transition plus the scheduler and
// dispatcher the post-commit side effects are delivered through.
func NewAdvanceOrderCommandHandler(
	uowFactory UoWFactory,
	scheduler DeadlineScheduler,
	dispatcher ports.AlertDispatcher,
	logger *slog.Logger,
) AdvanceOrderCommandHandler {
	return AdvanceOrderCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		dispatcher: dispatcher,
		logger:     logger.With("component", "advance_order_handler"),
		now:        time.Now,
	}
}

// Handle processes the stage transition command.
//
// Returns ErrOrderNotFound when the order does not exist, ErrStageConflict
// when the transition lost a race, a validation error for illegal
// transitions, and nil on success. Advancing a terminal order is an
// idempotent no-op success.
func (h AdvanceOrderCommandHandler) Handle(ctx context.Context, cmd AdvanceOrderCommand) error {
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

	err = o.Advance(cmd.FromStage(), cmd.ToStage(), cmd.MinutesSpent(), h.now(),
		cmd.BatchNumber(), cmd.DeliveryManID())
	if errors.Is(err, order.ErrOrderIsTerminal) {
		// the order finished (or was cancelled) before this request arrived;
		// treat as an idempotent no-op rather than a hard failure
		return nil
	}
	if errors.Is(err, order.ErrStageMismatch) {
		return ErrStageConflict
	}
	if err != nil {
		return err
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

	h.runSideEffects(ctx, o, st, storeErr, cmd.FromStage(), cmd.ToStage())
	return nil
}

// runSideEffects re-arms the deadline alerts for the new stage and sends the
// stage-change notifications. Every failure here is logged and swallowed.
func (h AdvanceOrderCommandHandler) runSideEffects(
	ctx context.Context,
	o *order.Order,
	st *store.Store,
	storeErr error,
	from, to order.Stage,
) {
	if err := h.scheduler.CancelAll(ctx, o.ID()); err != nil {
		h.logger.ErrorContext(ctx, "Failed to cancel deadline tasks",
			"order_id", o.ID().String(), "error", err)
	}

	if !to.IsTerminal() {
		if err := h.scheduler.Rearm(ctx, o.ID(), to, o.StoreID(), o.CreatedAt()); err != nil {
			h.logger.ErrorContext(ctx, "Failed to re-arm stage deadlines",
				"order_id", o.ID().String(), "stage", to.String(), "error", err)
		}
	}

	if storeErr != nil {
		h.logger.ErrorContext(ctx, "Failed to load store for stage-change notification",
			"order_id", o.ID().String(), "store_id", o.StoreID().String(), "error", storeErr)
		return
	}

	if err := h.dispatcher.NotifyStageChange(ctx, o, st, from, to); err != nil {
		h.logger.ErrorContext(ctx, "Failed to send stage-change notification",
			"order_id", o.ID().String(), "error", err)
	}
}

// WithClock replaces the handler's time source. Used by tests.
func (h AdvanceOrderCommandHandler) WithClock(now func() time.Time) AdvanceOrderCommandHandler {
	h.now = now
	return h
}
