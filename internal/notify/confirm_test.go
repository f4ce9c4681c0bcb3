package notify

import (
	"context"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestAwaitConfirm(t *testing.T) {
	tests := []struct {
		name     string
		queued   []amqp.Confirmation
		tag      uint64
		expected string
	}{
		{
			name:   "ack",
			queued: []amqp.Confirmation{{DeliveryTag: 1, Ack: true}},
			tag:    1,
		},
		{
			name: "stale_ack_skipped",
			queued: []amqp.Confirmation{
				{DeliveryTag: 1, Ack: true},
				{DeliveryTag: 2, Ack: false},
				{DeliveryTag: 3, Ack: true},
			},
			tag: 3,
		},
		{
			name: "nack_for_own_tag",
			queued: []amqp.Confirmation{
				{DeliveryTag: 4, Ack: true},
				{DeliveryTag: 5, Ack: false},
			},
			tag:      5,
			expected: "NACK",
		},
		{
			name:     "own_confirm_missing",
			queued:   []amqp.Confirmation{{DeliveryTag: 8, Ack: true}},
			tag:      7,
			expected: "confirm for delivery 7 missing",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			acks := make(chan amqp.Confirmation, len(testCase.queued))
			for _, c := range testCase.queued {
				acks <- c
			}
			err := awaitConfirm(context.Background(), acks, testCase.tag)
			if testCase.expected == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, testCase.expected)
		})
	}
}

func TestAwaitConfirm_TimeoutThenNextPublish(t *testing.T) {
	acks := make(chan amqp.Confirmation, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, awaitConfirm(ctx, acks, 1), context.DeadlineExceeded)

	// the late ack of message 1 arrives before the ack of message 2
	acks <- amqp.Confirmation{DeliveryTag: 1, Ack: false}
	acks <- amqp.Confirmation{DeliveryTag: 2, Ack: true}
	assert.NoError(t, awaitConfirm(context.Background(), acks, 2))
}

func TestAwaitConfirm_Closed(t *testing.T) {
	acks := make(chan amqp.Confirmation)
	close(acks)
	assert.ErrorContains(t, awaitConfirm(context.Background(), acks, 1), "confirm channel closed")
}
