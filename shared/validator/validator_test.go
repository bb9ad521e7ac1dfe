package validator_test

import (
	"errors"
	"marketplace/shared/failure"
	"marketplace/shared/validator"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reference string

func (r reference) Validate() error {
	if !strings.HasPrefix(string(r), "btc_") {
		return errors.New("reference must carry the btc_ prefix")
	}

	return nil
}

type offerRequest struct {
	ProfessionalID string    `json:"professional_id" validate:"required,uuid"`
	Email          string    `json:"email"           validate:"omitempty,email"`
	Price          float64   `json:"price"           validate:"gt=0"`
	Method         string    `json:"method"          validate:"oneof=pix credit_card"`
	Reference      reference `json:"reference"       validate:"omitempty,valid"`
}

func validOffer() offerRequest {
	return offerRequest{
		ProfessionalID: "0b6f6c52-8a3c-4b33-b1a4-38f0f8c7d0a1",
		Email:          "client@example.com",
		Price:          300,
		Method:         "pix",
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(r *offerRequest)
		expectError bool
	}{
		{name: "valid struct", mutate: func(*offerRequest) {}},
		{name: "missing professional", mutate: func(r *offerRequest) { r.ProfessionalID = "" }, expectError: true},
		{name: "professional not a uuid", mutate: func(r *offerRequest) { r.ProfessionalID = "abc" }, expectError: true},
		{name: "invalid email", mutate: func(r *offerRequest) { r.Email = "invalid-email" }, expectError: true},
		{name: "zero price", mutate: func(r *offerRequest) { r.Price = 0 }, expectError: true},
		{name: "unknown method", mutate: func(r *offerRequest) { r.Method = "cash" }, expectError: true},
		{name: "self validated field", mutate: func(r *offerRequest) { r.Reference = "btc_42" }},
		{name: "self validation fails", mutate: func(r *offerRequest) { r.Reference = "42" }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validOffer()
			tt.mutate(&data)

			err := validator.ValidateStruct(&data)

			if !tt.expectError {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.True(t, failure.IsKind(err, failure.KindValidation))
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name        string
		field       any
		tag         string
		expectError bool
	}{
		{name: "valid required string", field: "test", tag: "required"},
		{name: "empty required string", field: "", tag: "required", expectError: true},
		{name: "valid number in range", field: 25, tag: "gte=0,lte=100"},
		{name: "number out of range", field: 150, tag: "gte=0,lte=100", expectError: true},
		{name: "valid oneof", field: "accepted", tag: "oneof=accepted declined"},
		{name: "invalid oneof", field: "paid", tag: "oneof=accepted declined", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		jsonBody string
		kind     failure.Kind
	}{
		{
			name:     "valid JSON",
			jsonBody: `{"professional_id":"0b6f6c52-8a3c-4b33-b1a4-38f0f8c7d0a1","price":120,"method":"credit_card"}`,
		},
		{
			name:     "rule violation",
			jsonBody: `{"professional_id":"0b6f6c52-8a3c-4b33-b1a4-38f0f8c7d0a1","price":-1,"method":"pix"}`,
			kind:     failure.KindValidation,
		},
		{
			name:     "malformed JSON",
			jsonBody: `{"price":}`,
			kind:     failure.KindBadRequest,
		},
		{
			name:     "unknown field",
			jsonBody: `{"professional_id":"0b6f6c52-8a3c-4b33-b1a4-38f0f8c7d0a1","price":120,"method":"pix","prize":1}`,
			kind:     failure.KindBadRequest,
		},
		{
			name:     "empty JSON",
			jsonBody: `{}`,
			kind:     failure.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data offerRequest

			err := validator.Validate(strings.NewReader(tt.jsonBody), &data)

			if tt.kind == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.kind, failure.GetKind(err))
		})
	}
}

func TestValidationMessages_UseJSONNames(t *testing.T) {
	data := validOffer()
	data.ProfessionalID = ""

	err := validator.ValidateStruct(&data)

	require.Error(t, err)
	assert.Equal(t, "professional_id is required", err.Error())
}

func TestValidationMessages(t *testing.T) {
	data := validOffer()
	data.Price = 0

	err := validator.ValidateStruct(&data)

	require.Error(t, err)
	assert.Equal(t, "price must be greater than 0", err.Error())
}
