package scheduling_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"orderflow/internal/core/application/scheduling"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTaskScheduler struct{ mock.Mock }

func (m *MockTaskScheduler) Schedule(ctx context.Context, task ports.DeadlineTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskScheduler) Cancel(ctx context.Context, taskID string) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockTaskScheduler) CancelAll(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockStoreRepository struct{ mock.Mock }

func (m *MockStoreRepository) Add(ctx context.Context, st *store.Store) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}

func (m *MockStoreRepository) Get(ctx context.Context, id kernel.UUID) (*store.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Store), args.Error(1)
}

type MockEscalateOrderHandler struct{ mock.Mock }

func (m *MockEscalateOrderHandler) Handle(ctx context.Context, cmd commands.EscalateOrderCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	budget, err := store.NewTimeBudget(5, 45, 30)
	require.NoError(t, err)
	st, err := store.NewStore(kernel.NewUUID(), "Main Street", "main-street-ops", budget)
	require.NoError(t, err)
	return st
}

func TestStageDeadlineScheduler_Rearm_SchedulesWarningAndOverdue(t *testing.T) {
	ctx := t.Context()
	st := newTestStore(t)
	orderID := kernel.NewUUID()
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tasks := new(MockTaskScheduler)
	tasks.On("CancelAll", mock.Anything, orderID).Return(nil).Once()
	tasks.On("Schedule", mock.Anything, ports.DeadlineTask{
		ID:      ports.DeadlineTaskID(orderID, ports.TaskKindWarning, order.AwaitingConfirmation),
		Kind:    ports.TaskKindWarning,
		OrderID: orderID,
		Stage:   order.AwaitingConfirmation,
		StoreID: st.ID(),
		FireAt:  createdAt.Add(3*time.Minute + 45*time.Second),
	}).Return(nil).Once()
	tasks.On("Schedule", mock.Anything, ports.DeadlineTask{
		ID:      ports.DeadlineTaskID(orderID, ports.TaskKindOverdue, order.AwaitingConfirmation),
		Kind:    ports.TaskKindOverdue,
		OrderID: orderID,
		Stage:   order.AwaitingConfirmation,
		StoreID: st.ID(),
		FireAt:  createdAt.Add(5 * time.Minute),
	}).Return(nil).Once()

	stores := new(MockStoreRepository)
	stores.On("Get", mock.Anything, st.ID()).Return(st, nil).Once()

	escalate := new(MockEscalateOrderHandler)

	s := scheduling.NewStageDeadlineScheduler(tasks, stores, escalate, testLogger()).
		WithClock(func() time.Time { return createdAt })
	require.NoError(t, s.Rearm(ctx, orderID, order.AwaitingConfirmation, st.ID(), createdAt))

	tasks.AssertExpectations(t)
	escalate.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestStageDeadlineScheduler_Rearm_CumulativeDeadlinesForLaterStage(t *testing.T) {
	ctx := t.Context()
	st := newTestStore(t)
	orderID := kernel.NewUUID()
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := createdAt.Add(4 * time.Minute)

	// budget 5/45/30: InProduction's cumulative budget is 50m,
	// so the marks sit at createdAt+37m30s and createdAt+50m
	var scheduled []ports.DeadlineTask
	tasks := new(MockTaskScheduler)
	tasks.On("CancelAll", mock.Anything, orderID).Return(nil).Once()
	tasks.On("Schedule", mock.Anything, mock.AnythingOfType("ports.DeadlineTask")).
		Run(func(args mock.Arguments) {
			scheduled = append(scheduled, args.Get(1).(ports.DeadlineTask))
		}).Return(nil).Twice()

	stores := new(MockStoreRepository)
	stores.On("Get", mock.Anything, st.ID()).Return(st, nil).Once()

	s := scheduling.NewStageDeadlineScheduler(tasks, stores, new(MockEscalateOrderHandler), testLogger()).
		WithClock(func() time.Time { return now })
	require.NoError(t, s.Rearm(ctx, orderID, order.InProduction, st.ID(), createdAt))

	require.Len(t, scheduled, 2)
	assert.Equal(t, createdAt.Add(37*time.Minute+30*time.Second), scheduled[0].FireAt)
	assert.Equal(t, createdAt.Add(50*time.Minute), scheduled[1].FireAt)
	assert.Equal(t, order.InProduction, scheduled[0].Stage)
}

func TestStageDeadlineScheduler_Rearm_PastOverdueEscalatesImmediately(t *testing.T) {
	ctx := t.Context()
	st := newTestStore(t)
	orderID := kernel.NewUUID()
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := createdAt.Add(6 * time.Minute) // stage-1 budget is 5m

	tasks := new(MockTaskScheduler)
	tasks.On("CancelAll", mock.Anything, orderID).Return(nil).Once()

	stores := new(MockStoreRepository)
	stores.On("Get", mock.Anything, st.ID()).Return(st, nil).Once()

	escalate := new(MockEscalateOrderHandler)
	escalate.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.EscalateOrderCommand) bool {
		return cmd.OrderID() == orderID &&
			cmd.Stage() == order.AwaitingConfirmation &&
			cmd.Severity() == order.Red
	})).Return(nil).Once()

	s := scheduling.NewStageDeadlineScheduler(tasks, stores, escalate, testLogger()).
		WithClock(func() time.Time { return now })
	require.NoError(t, s.Rearm(ctx, orderID, order.AwaitingConfirmation, st.ID(), createdAt))

	tasks.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
	escalate.AssertExpectations(t)
}

func TestStageDeadlineScheduler_Rearm_PastWarningEscalatesAndArmsOverdue(t *testing.T) {
	ctx := t.Context()
	st := newTestStore(t)
	orderID := kernel.NewUUID()
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	now := createdAt.Add(4 * time.Minute) // past 3m45s warning, before 5m budget

	tasks := new(MockTaskScheduler)
	tasks.On("CancelAll", mock.Anything, orderID).Return(nil).Once()
	tasks.On("Schedule", mock.Anything, mock.MatchedBy(func(task ports.DeadlineTask) bool {
		return task.Kind == ports.TaskKindOverdue && task.FireAt.Equal(createdAt.Add(5*time.Minute))
	})).Return(nil).Once()

	stores := new(MockStoreRepository)
	stores.On("Get", mock.Anything, st.ID()).Return(st, nil).Once()

	escalate := new(MockEscalateOrderHandler)
	escalate.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.EscalateOrderCommand) bool {
		return cmd.Severity() == order.Yellow
	})).Return(nil).Once()

	s := scheduling.NewStageDeadlineScheduler(tasks, stores, escalate, testLogger()).
		WithClock(func() time.Time { return now })
	require.NoError(t, s.Rearm(ctx, orderID, order.AwaitingConfirmation, st.ID(), createdAt))

	tasks.AssertExpectations(t)
	escalate.AssertExpectations(t)
}

func TestStageDeadlineScheduler_Rearm_StoreLookupFailure(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	storeID := kernel.NewUUID()

	tasks := new(MockTaskScheduler)
	tasks.On("CancelAll", mock.Anything, orderID).Return(nil).Once()

	stores := new(MockStoreRepository)
	stores.On("Get", mock.Anything, storeID).Return(nil, errors.New("store lookup failed")).Once()

	s := scheduling.NewStageDeadlineScheduler(tasks, stores, new(MockEscalateOrderHandler), testLogger())
	require.Error(t, s.Rearm(ctx, orderID, order.AwaitingConfirmation, storeID, time.Now()))
}

func TestStageDeadlineScheduler_HandleFired_MapsKindToSeverity(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()

	escalate := new(MockEscalateOrderHandler)
	escalate.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.EscalateOrderCommand) bool {
		return cmd.OrderID() == orderID &&
			cmd.Stage() == order.InProduction &&
			cmd.Severity() == order.Yellow
	})).Return(nil).Once()
	escalate.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.EscalateOrderCommand) bool {
		return cmd.Severity() == order.Red
	})).Return(nil).Once()

	s := scheduling.NewStageDeadlineScheduler(
		new(MockTaskScheduler), new(MockStoreRepository), escalate, testLogger())

	warning := ports.DeadlineTask{
		ID:      ports.DeadlineTaskID(orderID, ports.TaskKindWarning, order.InProduction),
		Kind:    ports.TaskKindWarning,
		OrderID: orderID,
		Stage:   order.InProduction,
		StoreID: kernel.NewUUID(),
		FireAt:  time.Now(),
	}
	require.NoError(t, s.HandleFired(ctx, warning))

	overdue := warning
	overdue.ID = ports.DeadlineTaskID(orderID, ports.TaskKindOverdue, order.InProduction)
	overdue.Kind = ports.TaskKindOverdue
	require.NoError(t, s.HandleFired(ctx, overdue))

	escalate.AssertExpectations(t)
}

func TestStageDeadlineScheduler_CancelAll(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()

	tasks := new(MockTaskScheduler)
	tasks.On("CancelAll", mock.Anything, orderID).Return(nil).Once()

	s := scheduling.NewStageDeadlineScheduler(
		tasks, new(MockStoreRepository), new(MockEscalateOrderHandler), testLogger())
	require.NoError(t, s.CancelAll(ctx, orderID))
	tasks.AssertExpectations(t)
}
