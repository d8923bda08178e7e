package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from int
		to   int
		want bool
	}{
		{"cart to confirmed (COD checkout)", StatusCart, StatusConfirmed, true},
		{"cart to awaiting payment (online checkout)", StatusCart, StatusAwaitingPay, true},
		{"awaiting payment to confirmed", StatusAwaitingPay, StatusConfirmed, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"cart to cancelled", StatusCart, StatusCancelled, false},
		{"awaiting payment to cancelled", StatusAwaitingPay, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"no way back to cart", StatusConfirmed, StatusCart, false},
		{"unknown status", 42, StatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatusName(t *testing.T) {
	require.Equal(t, "cart", StatusName(StatusCart))
	require.Equal(t, "confirmed", StatusName(StatusConfirmed))
	require.Equal(t, "awaiting_payment", StatusName(StatusAwaitingPay))
	require.Equal(t, "completed", StatusName(StatusCompleted))
	require.Equal(t, "cancelled", StatusName(StatusCancelled))
	require.Equal(t, "unknown(9)", StatusName(9))
}
