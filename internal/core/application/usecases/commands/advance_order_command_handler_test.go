package commands_test

import (
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func deliverOrder(t *testing.T, o *order.Order, at time.Time) {
	t.Helper()
	require.NoError(t, o.Advance(order.AwaitingConfirmation, order.InProduction, 4, at, nil, nil))
	require.NoError(t, o.Advance(order.InProduction, order.OutForDelivery, 40, at, nil, nil))
	require.NoError(t, o.Advance(order.OutForDelivery, order.Delivered, 25, at, nil, nil))
}

func TestAdvanceOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	st := newTestStore(t)
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := createdAt.Add(4 * time.Minute)
	o := newTestOrder(t, st.ID(), createdAt)

	cmd, err := commands.NewAdvanceOrderCommand(
		o.ID(), order.AwaitingConfirmation, order.InProduction, 4)
	require.NoError(t, err)
	cmd.SetBatchNumber(7)

	orderRepo := new(MockOrderRepository)
	storeRepo := new(MockStoreRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		uow.On("StoreRepository").Return(storeRepo).Once(),
		storeRepo.On("Get", mock.Anything, st.ID()).Return(st, nil).Once(),
		orderRepo.On("Update", mock.Anything, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	scheduler := new(MockDeadlineScheduler)
	scheduler.On("CancelAll", mock.Anything, o.ID()).Return(nil).Once()
	scheduler.On("Rearm", mock.Anything, o.ID(), order.InProduction, st.ID(), createdAt).
		Return(nil).Once()

	dispatcher := new(MockAlertDispatcher)
	dispatcher.On("NotifyStageChange", mock.Anything, o, st,
		order.AwaitingConfirmation, order.InProduction).Return(nil).Once()

	h := commands.NewAdvanceOrderCommandHandler(factory, scheduler, dispatcher, testLogger()).
		WithClock(func() time.Time { return now })
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.InProduction, o.Stage())
	require.NotNil(t, o.BatchNumber())
	assert.Equal(t, 7, *o.BatchNumber())
	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	scheduler.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestAdvanceOrderCommandHandler_Handle_TerminalStageCancelsDeadlines(t *testing.T) {
	ctx := t.Context()
	st := newTestStore(t)
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	o := newTestOrder(t, st.ID(), createdAt)
	require.NoError(t, o.Advance(order.AwaitingConfirmation, order.InProduction, 4, createdAt, nil, nil))
	require.NoError(t, o.Advance(order.InProduction, order.OutForDelivery, 40, createdAt, nil, nil))

	cmd, err := commands.NewAdvanceOrderCommand(o.ID(), order.OutForDelivery, order.Delivered, 25)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	storeRepo := new(MockStoreRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		uow.On("StoreRepository").Return(storeRepo).Once(),
		storeRepo.On("Get", mock.Anything, st.ID()).Return(st, nil).Once(),
		orderRepo.On("Update", mock.Anything, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	scheduler := new(MockDeadlineScheduler)
	scheduler.On("CancelAll", mock.Anything, o.ID()).Return(nil).Once()

	dispatcher := new(MockAlertDispatcher)
	dispatcher.On("NotifyStageChange", mock.Anything, o, st,
		order.OutForDelivery, order.Delivered).Return(nil).Once()

	h := commands.NewAdvanceOrderCommandHandler(factory, scheduler, dispatcher, testLogger())
	require.NoError(t, h.Handle(ctx, cmd))

	// delivered orders never get new deadline tasks armed
	scheduler.AssertNotCalled(t, "Rearm",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	scheduler.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestAdvanceOrderCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewAdvanceOrderCommand(
		orderID, order.AwaitingConfirmation, order.InProduction, 4)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", mock.Anything, orderID).
			Return(nil, errs.NewObjectNotFoundError("order", orderID)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAdvanceOrderCommandHandler(
		factory, new(MockDeadlineScheduler), new(MockAlertDispatcher), testLogger())
	require.ErrorIs(t, h.Handle(ctx, cmd), commands.ErrOrderNotFound)
}

func TestAdvanceOrderCommandHandler_Handle_StageMismatchIsConflict(t *testing.T) {
	ctx := t.Context()
	st := newTestStore(t)
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	o := newTestOrder(t, st.ID(), createdAt)
	require.NoError(t, o.Advance(order.AwaitingConfirmation, order.InProduction, 4, createdAt, nil, nil))

	// operator still sees AwaitingConfirmation
	cmd, err := commands.NewAdvanceOrderCommand(
		o.ID(), order.AwaitingConfirmation, order.InProduction, 4)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAdvanceOrderCommandHandler(
		factory, new(MockDeadlineScheduler), new(MockAlertDispatcher), testLogger())
	require.ErrorIs(t, h.Handle(ctx, cmd), commands.ErrStageConflict)
	assert.Equal(t, order.InProduction, o.Stage())
}

func TestAdvanceOrderCommandHandler_Handle_VersionConflictIsConflict(t *testing.T) {
	ctx := t.Context()
	st := newTestStore(t)
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	o := newTestOrder(t, st.ID(), createdAt)

	cmd, err := commands.NewAdvanceOrderCommand(
		o.ID(), order.AwaitingConfirmation, order.InProduction, 4)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	storeRepo := new(MockStoreRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		uow.On("StoreRepository").Return(storeRepo).Once(),
		storeRepo.On("Get", mock.Anything, st.ID()).Return(st, nil).Once(),
		orderRepo.On("Update", mock.Anything, o).
			Return(errs.NewConcurrencyConflictError("order", o.ID())).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	dispatcher := new(MockAlertDispatcher)

	h := commands.NewAdvanceOrderCommandHandler(
		factory, new(MockDeadlineScheduler), dispatcher, testLogger())
	require.ErrorIs(t, h.Handle(ctx, cmd), commands.ErrStageConflict)
	dispatcher.AssertNotCalled(t, "NotifyStageChange",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceOrderCommandHandler_Handle_TerminalOrderIsNoOp(t *testing.T) {
	ctx := t.Context()
	st := newTestStore(t)
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	o := newTestOrder(t, st.ID(), createdAt)
	deliverOrder(t, o, createdAt)
	versionBefore := o.Version()

	cmd, err := commands.NewAdvanceOrderCommand(
		o.ID(), order.OutForDelivery, order.Delivered, 25)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAdvanceOrderCommandHandler(
		factory, new(MockDeadlineScheduler), new(MockAlertDispatcher), testLogger())
	require.NoError(t, h.Handle(ctx, cmd))
	assert.Equal(t, versionBefore, o.Version())
	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
