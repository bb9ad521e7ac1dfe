package model_test

import (
	"marketplace/internal/domains/payment/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapGatewayStatus(t *testing.T) {
	tests := map[string]string{
		"approved":     model.StatusCompleted,
		"rejected":     model.StatusFailed,
		"cancelled":    model.StatusCancelled,
		"refunded":     model.StatusRefunded,
		"in_process":   model.StatusPending,
		"pending":      model.StatusPending,
		"charged_back": model.StatusPending,
		"":             model.StatusPending,
	}

	for gateway, want := range tests {
		assert.Equal(t, want, model.MapGatewayStatus(gateway), gateway)
	}
}

func TestPayment_IsTerminal(t *testing.T) {
	assert.False(t, model.Payment{Status: model.StatusPending}.IsTerminal())
	assert.True(t, model.Payment{Status: model.StatusRefunded}.IsTerminal())
	assert.False(t, model.Payment{Method: model.MethodBitcoin}.GatewayTracked())
	assert.True(t, model.Payment{Method: model.MethodPix}.GatewayTracked())
}
