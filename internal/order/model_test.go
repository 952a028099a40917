package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradepost-dev/tradepost/internal/fault"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusShipped, true},
		{StatusShipped, StatusCompleted, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, false},
		{StatusShipped, StatusConfirmed, false},

		// cancel from every non-terminal state
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusShipped, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, true},
		{StatusDisputed, StatusCancelled, true},

		// terminal states go nowhere
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCompleted, StatusShipped, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateTransition_Kind(t *testing.T) {
	err := ValidateTransition(StatusCompleted, StatusCancelled)
	assert.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))

	assert.NoError(t, ValidateTransition(StatusPending, StatusConfirmed))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusShipped))
	assert.False(t, IsTerminal(StatusDisputed))
}

func TestPaymentStatusFor_HoldsInvariantPairs(t *testing.T) {
	// released pairs with completed, refunded with cancelled
	assert.Equal(t, PaymentReleased, PaymentStatusFor(StatusCompleted))
	assert.Equal(t, PaymentRefunded, PaymentStatusFor(StatusCancelled))

	// every other status leaves custody untouched
	for _, s := range []string{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusDisputed} {
		assert.Empty(t, PaymentStatusFor(s), "status %s must not move payment", s)
	}
}
