package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextAllowed(t *testing.T) {
	tests := []struct {
		name     string
		from, to OrderStatus
		expected bool
	}{
		{name: "pending_to_preparing", from: StatusPending, to: StatusPreparing, expected: true},
		{name: "preparing_to_ready", from: StatusPreparing, to: StatusReady, expected: true},
		{name: "ready_to_delivery", from: StatusReady, to: StatusDelivery, expected: true},
		{name: "pickup_ready_to_completed", from: StatusReady, to: StatusCompleted, expected: true},
		{name: "delivery_to_completed", from: StatusDelivery, to: StatusCompleted, expected: true},
		{name: "cancel_while_preparing", from: StatusPreparing, to: StatusCancelled, expected: true},
		{name: "skip_ahead", from: StatusPending, to: StatusReady, expected: false},
		{name: "step_back", from: StatusReady, to: StatusPreparing, expected: false},
		{name: "reopen_completed", from: StatusCompleted, to: StatusPending, expected: false},
		{name: "cancel_cancelled", from: StatusCancelled, to: StatusCancelled, expected: false},
		{name: "unknown_target", from: StatusPending, to: OrderStatus("lost"), expected: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, NextAllowed(testCase.from, testCase.to))
		})
	}
}

func TestOrder_Active(t *testing.T) {
	tests := []struct {
		name     string
		order    Order
		expected bool
	}{
		{
			name:     "cash_pending",
			order:    Order{Status: StatusPending, Payment: PaymentInfo{Method: PaymentCash, Status: PaymentUnpaid}},
			expected: true,
		},
		{
			name:     "ideal_paid",
			order:    Order{Status: StatusPreparing, Payment: PaymentInfo{Method: PaymentIDEAL, Status: PaymentPaid}},
			expected: true,
		},
		{
			name:     "card_unpaid_hidden",
			order:    Order{Status: StatusPending, Payment: PaymentInfo{Method: PaymentCard, Status: PaymentPending}},
			expected: false,
		},
		{
			name:     "completed_not_active",
			order:    Order{Status: StatusCompleted, Payment: PaymentInfo{Method: PaymentCash}},
			expected: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.order.Active())
		})
	}
}

func TestIsLocalOrderID(t *testing.T) {
	assert.True(t, IsLocalOrderID("ORD-LX2K9A-1F3C"))
	assert.False(t, IsLocalOrderID("6f1c2a9e-0000-4000-8000-000000000000"))
}
