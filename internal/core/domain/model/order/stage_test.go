package order_test

import (
	"testing"

	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_Validate(t *testing.T) {
	t.Run("valid stages pass validation", func(t *testing.T) {
		for _, s := range []order.Stage{
			order.AwaitingConfirmation,
			order.InProduction,
			order.OutForDelivery,
			order.Delivered,
			order.Cancelled,
		} {
			assert.NoError(t, s.Validate(), s.String())
		}
	})

	t.Run("unknown and out of range stages fail validation", func(t *testing.T) {
		require.Error(t, order.StageUnknown.Validate())
		require.Error(t, order.Stage(42).Validate())
		require.Error(t, order.Stage(-1).Validate())
	})
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "AwaitingConfirmation", order.AwaitingConfirmation.String())
	assert.Equal(t, "InProduction", order.InProduction.String())
	assert.Equal(t, "OutForDelivery", order.OutForDelivery.String())
	assert.Equal(t, "Delivered", order.Delivered.String())
	assert.Equal(t, "Cancelled", order.Cancelled.String())
	assert.Equal(t, "Unknown", order.Stage(42).String())
}

func TestStage_IsTerminal(t *testing.T) {
	assert.False(t, order.AwaitingConfirmation.IsTerminal())
	assert.False(t, order.InProduction.IsTerminal())
	assert.False(t, order.OutForDelivery.IsTerminal())
	assert.True(t, order.Delivered.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())
}

func TestStage_HasTimeBudget(t *testing.T) {
	assert.True(t, order.AwaitingConfirmation.HasTimeBudget())
	assert.True(t, order.InProduction.HasTimeBudget())
	assert.True(t, order.OutForDelivery.HasTimeBudget())
	assert.False(t, order.Delivered.HasTimeBudget())
	assert.False(t, order.Cancelled.HasTimeBudget())
}

func TestStage_Advance(t *testing.T) {
	t.Run("forward transitions succeed", func(t *testing.T) {
		testCases := []struct {
			from order.Stage
			to   order.Stage
		}{
			{order.AwaitingConfirmation, order.InProduction},
			{order.InProduction, order.OutForDelivery},
			{order.OutForDelivery, order.Delivered},
		}

		for _, tc := range testCases {
			next, err := tc.from.Advance(tc.to)
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, next)
		}
	})

	t.Run("skipping a stage is rejected", func(t *testing.T) {
		_, err := order.AwaitingConfirmation.Advance(order.OutForDelivery)
		require.Error(t, err)

		_, err = order.InProduction.Advance(order.Delivered)
		require.Error(t, err)
	})

	t.Run("backward transitions are rejected", func(t *testing.T) {
		_, err := order.InProduction.Advance(order.AwaitingConfirmation)
		require.Error(t, err)

		_, err = order.OutForDelivery.Advance(order.InProduction)
		require.Error(t, err)
	})

	t.Run("terminal stages have no outgoing transitions", func(t *testing.T) {
		for _, s := range []order.Stage{order.Delivered, order.Cancelled} {
			for next := order.AwaitingConfirmation; next <= order.Cancelled; next++ {
				_, err := s.Advance(next)
				require.Error(t, err, "%s -> %s", s, next)
			}
		}
	})

	t.Run("advancing into Cancelled is rejected", func(t *testing.T) {
		_, err := order.OutForDelivery.Advance(order.Cancelled)
		require.Error(t, err)
	})
}

func TestStage_Cancel(t *testing.T) {
	t.Run("non-terminal stages can be cancelled", func(t *testing.T) {
		for _, s := range []order.Stage{
			order.AwaitingConfirmation,
			order.InProduction,
			order.OutForDelivery,
		} {
			next, err := s.Cancel()
			require.NoError(t, err, s.String())
			assert.Equal(t, order.Cancelled, next)
		}
	})

	t.Run("terminal stages cannot be cancelled", func(t *testing.T) {
		_, err := order.Delivered.Cancel()
		require.Error(t, err)

		_, err = order.Cancelled.Cancel()
		require.Error(t, err)
	})
}

func TestAlertStatus(t *testing.T) {
	t.Run("severity ordering is green < yellow < red", func(t *testing.T) {
		assert.True(t, order.Yellow.IsMoreSevereThan(order.Green))
		assert.True(t, order.Red.IsMoreSevereThan(order.Yellow))
		assert.True(t, order.Red.IsMoreSevereThan(order.Green))

		assert.False(t, order.Green.IsMoreSevereThan(order.Green))
		assert.False(t, order.Green.IsMoreSevereThan(order.Yellow))
		assert.False(t, order.Yellow.IsMoreSevereThan(order.Red))
		assert.False(t, order.Red.IsMoreSevereThan(order.Red))
	})

	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, order.Green.Validate())
		assert.NoError(t, order.Yellow.Validate())
		assert.NoError(t, order.Red.Validate())
		require.Error(t, order.AlertStatusUnknown.Validate())
		require.Error(t, order.AlertStatus(7).Validate())
	})

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "Green", order.Green.String())
		assert.Equal(t, "Yellow", order.Yellow.String())
		assert.Equal(t, "Red", order.Red.String())
		assert.Equal(t, "Unknown", order.AlertStatus(7).String())
	})
}
