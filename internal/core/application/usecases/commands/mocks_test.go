package commands_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllActive(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
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

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) StoreRepository() ports.StoreRepository {
	args := m.Called()
	return args.Get(0).(ports.StoreRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockDeadlineScheduler struct{ mock.Mock }

func (m *MockDeadlineScheduler) Rearm(
	ctx context.Context,
	orderID kernel.UUID,
	stage order.Stage,
	storeID kernel.UUID,
	createdAt time.Time,
) error {
	args := m.Called(ctx, orderID, stage, storeID, createdAt)
	return args.Error(0)
}

func (m *MockDeadlineScheduler) CancelAll(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockAlertDispatcher struct{ mock.Mock }

func (m *MockAlertDispatcher) NotifyStageChange(
	ctx context.Context,
	o *order.Order,
	st *store.Store,
	from, to order.Stage,
) error {
	args := m.Called(ctx, o, st, from, to)
	return args.Error(0)
}

func (m *MockAlertDispatcher) NotifyEscalation(
	ctx context.Context,
	o *order.Order,
	st *store.Store,
	severity order.AlertStatus,
) error {
	args := m.Called(ctx, o, st, severity)
	return args.Error(0)
}

type MockEscalateOrderHandler struct{ mock.Mock }

func (m *MockEscalateOrderHandler) Handle(ctx context.Context, cmd commands.EscalateOrderCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func testItems() []order.Item {
	return []order.Item{
		{Name: "Margherita", Quantity: 1, Price: 11.50},
		{Name: "Cola", Quantity: 2, Price: 2.25},
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	budget, err := store.NewTimeBudget(5, 45, 30)
	require.NoError(t, err)

	st, err := store.NewStore(kernel.NewUUID(), "Main Street", "main-street-ops", budget)
	require.NoError(t, err)
	return st
}

func newTestOrder(t *testing.T, storeID kernel.UUID, createdAt time.Time) *order.Order {
	t.Helper()

	o, err := order.NewOrder(
		kernel.NewUUID(), storeID, "Alice", "+15550100", testItems(), 16.00, createdAt)
	require.NoError(t, err)
	return o
}
