package dto

import (
	"marketplace/internal/domains/payment/model"
	"marketplace/shared/commission"
	gDto "marketplace/shared/dto"
	gModel "marketplace/shared/model"
	"marketplace/shared/timezone"
	"time"
)

type CaptureRequest struct {
	BookingID        *string              `json:"booking_id"         validate:"omitempty,uuid"`
	Amount           float64              `json:"amount"             validate:"gt=0"`
	Method           string               `json:"method"             validate:"required,oneof=pix credit_card debit_card boleto bitcoin"`
	PayerEmail       string               `json:"payer_email"        validate:"required,email"`
	PayerName        string               `json:"payer_name"         validate:"required,min=2"`
	Description      string               `json:"description"        validate:"required,min=5"`
	IsAdvancePayment bool                 `json:"is_advance_payment"`
	Commission       *commission.Schedule `json:"commission,omitempty"`
}

// ToModel builds the pending, held ledger row for an accepted capture.
func (c *CaptureRequest) ToModel(id, reference string, redeemCode *string, schedule commission.Schedule, actor string) model.Payment {
	fee, provider := commission.Split(c.Amount, schedule)

	return model.Payment{
		ID:                id,
		BookingID:         c.BookingID,
		Amount:            commission.Round(c.Amount),
		Method:            c.Method,
		ExternalReference: reference,
		RedeemCode:        redeemCode,
		Status:            model.StatusPending,
		FundsStatus:       model.FundsHeld,
		PlatformFee:       fee,
		ProviderAmount:    provider,
		IsAdvancePayment:  c.IsAdvancePayment,
		PayerEmail:        c.PayerEmail,
		PayerName:         c.PayerName,
		Description:       c.Description,
		Metadata:          gModel.NewMetadata(timezone.Now(), actor),
	}
}

type CaptureResponse struct {
	PaymentID         string  `json:"payment_id"`
	ExternalReference string  `json:"external_reference"`
	Status            string  `json:"status"`
	QRCode            *string `json:"qr_code,omitempty"`
	TicketURL         string  `json:"ticket_url,omitempty"`
	PlatformFee       float64 `json:"platform_fee"`
	ProviderAmount    float64 `json:"provider_amount"`
}

func (r *CaptureResponse) FromModel(model model.Payment, ticketURL string) {
	r.PaymentID = model.ID
	r.ExternalReference = model.ExternalReference
	r.Status = model.Status
	r.QRCode = model.RedeemCode
	r.TicketURL = ticketURL
	r.PlatformFee = model.PlatformFee
	r.ProviderAmount = model.ProviderAmount
}

type PaymentResponse struct {
	ID                string  `json:"id"`
	BookingID         *string `json:"booking_id,omitempty"`
	Amount            float64 `json:"amount"`
	Method            string  `json:"method"`
	ExternalReference string  `json:"external_reference"`
	RedeemCode        *string `json:"redeem_code,omitempty"`
	Status            string  `json:"status"`
	FundsStatus       string  `json:"funds_status"`
	PlatformFee       float64 `json:"platform_fee"`
	ProviderAmount    float64 `json:"provider_amount"`
	IsAdvancePayment  bool    `json:"is_advance_payment"`
	PayerEmail        string  `json:"payer_email"`
	PayerName         string  `json:"payer_name"`
	Description       string  `json:"description"`
	CompletedAt       *string `json:"completed_at,omitempty"`
	ReleasedAt        *string `json:"released_at,omitempty"`
	gDto.Metadata
}

func (r *PaymentResponse) FromModel(model model.Payment) {
	r.ID = model.ID
	r.BookingID = model.BookingID
	r.Amount = model.Amount
	r.Method = model.Method
	r.ExternalReference = model.ExternalReference
	r.RedeemCode = model.RedeemCode
	r.Status = model.Status
	r.FundsStatus = model.FundsStatus
	r.PlatformFee = model.PlatformFee
	r.ProviderAmount = model.ProviderAmount
	r.IsAdvancePayment = model.IsAdvancePayment
	r.PayerEmail = model.PayerEmail
	r.PayerName = model.PayerName
	r.Description = model.Description
	r.CompletedAt = formatTime(model.CompletedAt)
	r.ReleasedAt = formatTime(model.ReleasedAt)
	r.Metadata.FromModel(model.Metadata)
}

type PaymentStatusResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	FundsStatus string `json:"funds_status"`
	Changed     bool   `json:"changed"`
}

func (r *PaymentStatusResponse) FromModel(model model.Payment, changed bool) {
	r.ID = model.ID
	r.Status = model.Status
	r.FundsStatus = model.FundsStatus
	r.Changed = changed
}

type ReconcileReport struct {
	Recovered    int `json:"recovered"`
	Polled       int `json:"polled"`
	Transitioned int `json:"transitioned"`
	Errors       int `json:"errors"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := timezone.Format(*t, time.RFC3339)

	return &formatted
}
