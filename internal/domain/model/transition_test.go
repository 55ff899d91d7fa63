package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/highcrestlabs/academy-payments/internal/domain/model"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name     string
		current  model.PaymentStatus
		event    model.PaymentEvent
		want     model.PaymentStatus
		accepted bool
	}{
		{"pending settles on success", model.PaymentStatusPending, model.EventGatewaySuccess, model.PaymentStatusCompleted, true},
		{"pending settles on failure", model.PaymentStatusPending, model.EventGatewayFailed, model.PaymentStatusFailed, true},
		{"pending settles on abandonment", model.PaymentStatusPending, model.EventGatewayAbandoned, model.PaymentStatusAbandoned, true},
		{"completed accepts refund", model.PaymentStatusCompleted, model.EventRefund, model.PaymentStatusRefunded, true},

		{"pending rejects refund", model.PaymentStatusPending, model.EventRefund, "", false},
		{"completed rejects success", model.PaymentStatusCompleted, model.EventGatewaySuccess, "", false},
		{"completed rejects failure", model.PaymentStatusCompleted, model.EventGatewayFailed, "", false},
		{"completed rejects abandonment", model.PaymentStatusCompleted, model.EventGatewayAbandoned, "", false},
		{"failed rejects success", model.PaymentStatusFailed, model.EventGatewaySuccess, "", false},
		{"failed rejects refund", model.PaymentStatusFailed, model.EventRefund, "", false},
		{"abandoned rejects success", model.PaymentStatusAbandoned, model.EventGatewaySuccess, "", false},
		{"refunded rejects everything", model.PaymentStatusRefunded, model.EventRefund, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := model.Transition(tt.current, tt.event)
			assert.Equal(t, tt.accepted, ok)
			if tt.accepted {
				assert.Equal(t, tt.want, next)
			}
		})
	}
}

// A completed record must never regress, no matter what sequence of gateway
// events arrives afterwards.
func TestTransition_CompletedNeverRegresses(t *testing.T) {
	events := []model.PaymentEvent{
		model.EventGatewayFailed,
		model.EventGatewayAbandoned,
		model.EventGatewaySuccess,
	}

	for _, ev := range events {
		_, ok := model.Transition(model.PaymentStatusCompleted, ev)
		assert.False(t, ok, "completed must reject %s", ev)
	}
}

func TestPaymentStatus_IsTerminal(t *testing.T) {
	assert.False(t, model.PaymentStatusPending.IsTerminal())
	for _, s := range []model.PaymentStatus{
		model.PaymentStatusCompleted,
		model.PaymentStatusFailed,
		model.PaymentStatusAbandoned,
		model.PaymentStatusRefunded,
	} {
		assert.True(t, s.IsTerminal())
	}
}
