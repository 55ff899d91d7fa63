package model

// PaymentEvent is an observed fact that may move a payment record to a new
// status. Events come from the gateway (verification or webhook), never from
// client input.
type PaymentEvent string

const (
	EventGatewaySuccess   PaymentEvent = "gateway_success"
	EventGatewayFailed    PaymentEvent = "gateway_failed"
	EventGatewayAbandoned PaymentEvent = "gateway_abandoned"
	EventRefund           PaymentEvent = "refund"
)

// transitions is the single source of truth for allowed status changes.
// Pending moves to exactly one terminal state; completed may only move to
// refunded. Everything else is rejected, which is what makes concurrent
// settlement attempts collapse to one effective write.
var transitions = map[PaymentStatus]map[PaymentEvent]PaymentStatus{
	PaymentStatusPending: {
		EventGatewaySuccess:   PaymentStatusCompleted,
		EventGatewayFailed:    PaymentStatusFailed,
		EventGatewayAbandoned: PaymentStatusAbandoned,
	},
	PaymentStatusCompleted: {
		EventRefund: PaymentStatusRefunded,
	},
}

// Transition returns the status that applying event to current would produce.
// ok is false when the transition is not allowed; callers must then treat the
// write as a no-op rather than an error.
func Transition(current PaymentStatus, event PaymentEvent) (PaymentStatus, bool) {
	next, ok := transitions[current][event]
	return next, ok
}
