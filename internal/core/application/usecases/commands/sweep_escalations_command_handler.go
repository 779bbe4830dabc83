package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/domain/services"
)

// EscalateOrderHandler delivers a single escalation decision. Implemented by
// EscalateOrderCommandHandler; the indirection lets the sweep be tested
// without a second transaction stack.
type EscalateOrderHandler interface {
	Handle(ctx context.Context, cmd EscalateOrderCommand) error
}

// SweepEscalationsCommandHandler reconciles every active order's alert
// status against its stage deadlines.
//
// The sweep reads all active orders in one snapshot, computes the deadlines
// from each store's time budget, and hands every order found past a
// deadline to the escalation handler. The escalation handler re-reads the
// order in its own transaction, so an order that advanced or escalated
// between the snapshot and the write is dropped there rather than
// double-alerted.
//
// One order's failure never stops the sweep; it is logged and the sweep
// moves on.
type SweepEscalationsCommandHandler struct {
	uowFactory UoWFactory
	escalate   EscalateOrderHandler
	calc       services.DeadlineCalculator
	logger     *slog.Logger
	now        func() time.Time
}

// NewSweepEscalationsCommandHandler creates a handler for reconciliation sweeps.
func NewSweepEscalationsCommandHandler(
	uowFactory UoWFactory,
	escalate EscalateOrderHandler,
	calc services.DeadlineCalculator,
	logger *slog.Logger,
) SweepEscalationsCommandHandler {
	return SweepEscalationsCommandHandler{
		uowFactory: uowFactory,
		escalate:   escalate,
		calc:       calc,
		logger:     logger.With("component", "escalation_sweep_handler"),
		now:        time.Now,
	}
}

// Handle runs one reconciliation sweep over all active orders.
func (h SweepEscalationsCommandHandler) Handle(ctx context.Context, cmd SweepEscalationsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	candidates, err := h.collectDue(ctx)
	if err != nil {
		return err
	}

	for _, c := range candidates {
		if err := h.escalate.Handle(ctx, c); err != nil {
			h.logger.ErrorContext(ctx, "Failed to escalate order during sweep",
				"order_id", c.OrderID().String(), "severity", c.Severity().String(), "error", err)
		}
	}

	return nil
}

// collectDue reads the active orders in a read-only transaction and returns
// an escalation command for every order past a deadline its alert status
// does not yet reflect.
func (h SweepEscalationsCommandHandler) collectDue(ctx context.Context) ([]EscalateOrderCommand, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().GetAllActive(ctx)
	if err != nil {
		return nil, err
	}

	now := h.now()
	budgets := make(map[kernel.UUID]store.TimeBudget)
	candidates := make([]EscalateOrderCommand, 0)

	for _, o := range orders {
		budget, ok := budgets[o.StoreID()]
		if !ok {
			st, err := uow.StoreRepository().Get(ctx, o.StoreID())
			if err != nil {
				h.logger.ErrorContext(ctx, "Failed to load store during sweep",
					"order_id", o.ID().String(), "store_id", o.StoreID().String(), "error", err)
				continue
			}
			budget = st.TimeBudget()
			budgets[o.StoreID()] = budget
		}

		severity, ok, err := h.dueSeverity(o, budget, now)
		if err != nil {
			h.logger.ErrorContext(ctx, "Failed to compute deadlines during sweep",
				"order_id", o.ID().String(), "stage", o.Stage().String(), "error", err)
			continue
		}
		if !ok {
			continue
		}

		cmd, err := NewEscalateOrderCommand(o.ID(), o.Stage(), severity)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, cmd)
	}

	return candidates, nil
}

// dueSeverity decides whether the order's alert status lags its deadlines.
// Returns the severity to escalate to and whether an escalation is due.
func (h SweepEscalationsCommandHandler) dueSeverity(
	o *order.Order,
	budget store.TimeBudget,
	now time.Time,
) (order.AlertStatus, bool, error) {
	warningAt, overdueAt, err := h.calc.Deadlines(o.CreatedAt(), budget, o.Stage())
	if err != nil {
		return order.AlertStatusUnknown, false, err
	}

	switch {
	case !now.Before(overdueAt) && o.AlertStatus() != order.Red:
		return order.Red, true, nil
	case !now.Before(warningAt) && o.AlertStatus() == order.Green:
		return order.Yellow, true, nil
	default:
		return order.AlertStatusUnknown, false, nil
	}
}

// WithClock replaces the handler's time source. Used by tests.
func (h SweepEscalationsCommandHandler) WithClock(now func() time.Time) SweepEscalationsCommandHandler {
	h.now = now
	return h
}
