package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusDelivered} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, OrderStatus("cancelled").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatusChainMovesOneStepForward(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusDelivered, true},

		// backward
		{StatusPreparing, StatusPending, false},
		{StatusReady, StatusPreparing, false},
		{StatusDelivered, StatusReady, false},

		// skipped steps
		{StatusPending, StatusReady, false},
		{StatusPending, StatusDelivered, false},
		{StatusPreparing, StatusDelivered, false},

		// self moves are not transitions (handled as no-ops upstream)
		{StatusPending, StatusPending, false},
		{StatusDelivered, StatusDelivered, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanAdvanceTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusReady.Terminal())
	assert.False(t, OrderStatus("cancelled").Terminal())
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := &InvalidTransitionError{
		Current: StatusReady,
		Next:    StatusPending,
		Allowed: AllowedTransitions[StatusReady],
	}
	assert.Equal(t, "cannot move order from ready to pending", err.Error())
	assert.Equal(t, []OrderStatus{StatusDelivered}, err.Allowed)
}
