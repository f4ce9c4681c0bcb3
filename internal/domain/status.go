package domain

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivery  OrderStatus = "delivery"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// fulfillment order of the non-cancel states
var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusPreparing: 1,
	StatusReady:     2,
	StatusDelivery:  3,
	StatusCompleted: 4,
}

func (s OrderStatus) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// NextAllowed reports whether a strict fulfillment flow permits from -> to:
// one step forward, or cancellation from any non-terminal state.
// Pickup orders may skip the delivery step.
func NextAllowed(from, to OrderStatus) bool {
	if from.Terminal() || !to.Valid() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	step := statusRank[to] - statusRank[from]
	if step == 1 {
		return true
	}
	return from == StatusReady && to == StatusCompleted
}
