package dto_test

import (
	"marketplace/internal/domains/payment/model"
	"marketplace/internal/domains/payment/model/dto"
	"marketplace/shared/commission"
	"marketplace/shared/failure"
	"marketplace/shared/validator"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCapture() dto.CaptureRequest {
	return dto.CaptureRequest{
		Amount:      300,
		Method:      model.MethodPix,
		PayerEmail:  "client@example.com",
		PayerName:   "Ana",
		Description: "Advance for garden cleaning",
	}
}

func TestCaptureRequest_Validation(t *testing.T) {
	bookingID := "not-a-uuid"

	tests := []struct {
		name   string
		mutate func(r *dto.CaptureRequest)
		valid  bool
	}{
		{name: "valid", mutate: func(*dto.CaptureRequest) {}, valid: true},
		{name: "zero amount", mutate: func(r *dto.CaptureRequest) { r.Amount = 0 }},
		{name: "bad email", mutate: func(r *dto.CaptureRequest) { r.PayerEmail = "client-at-example" }},
		{name: "short name", mutate: func(r *dto.CaptureRequest) { r.PayerName = "A" }},
		{name: "short description", mutate: func(r *dto.CaptureRequest) { r.Description = "hey" }},
		{name: "unknown method", mutate: func(r *dto.CaptureRequest) { r.Method = "cash" }},
		{name: "bad booking id", mutate: func(r *dto.CaptureRequest) { r.BookingID = &bookingID }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCapture()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)

			if tt.valid {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.True(t, failure.IsKind(err, failure.KindValidation))
		})
	}
}

func TestCaptureRequest_ToModel(t *testing.T) {
	req := validCapture()
	req.IsAdvancePayment = true

	payment := req.ToModel("pay-1", "1319876543", nil, commission.Schedule{PlatformFeePercentage: 10, ProviderPercentage: 90}, "c-1")

	assert.Equal(t, model.StatusPending, payment.Status)
	assert.Equal(t, model.FundsHeld, payment.FundsStatus)
	assert.InDelta(t, 30.0, payment.PlatformFee, 1e-9)
	assert.InDelta(t, 270.0, payment.ProviderAmount, 1e-9)
	assert.True(t, payment.IsAdvancePayment)
	assert.Equal(t, "c-1", payment.CreatedBy)
}
