package model

import (
	"marketplace/shared/model"
	"time"
)

const (
	TableName  = "payments"
	EntityName = "payment"

	FieldID                = "id"
	FieldBookingID         = "booking_id"
	FieldAmount            = "amount"
	FieldMethod            = "method"
	FieldExternalReference = "external_reference"
	FieldRedeemCode        = "redeem_code"
	FieldStatus            = "status"
	FieldFundsStatus       = "funds_status"
	FieldPlatformFee       = "platform_fee"
	FieldProviderAmount    = "provider_amount"
	FieldIsAdvancePayment  = "is_advance_payment"
	FieldPayerEmail        = "payer_email"
	FieldPayerName         = "payer_name"
	FieldDescription       = "description"
	FieldCompletedAt       = "completed_at"
	FieldReleasedAt        = "released_at"
)

const (
	MethodPix        = "pix"
	MethodCreditCard = "credit_card"
	MethodDebitCard  = "debit_card"
	MethodBoleto     = "boleto"
	MethodBitcoin    = "bitcoin"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

const (
	FundsHeld     = "held"
	FundsReleased = "released"
)

// BitcoinReferencePrefix marks references minted locally instead of by the gateway.
const BitcoinReferencePrefix = "btc_"

type Payment struct {
	ID                string     `db:"id"`
	BookingID         *string    `db:"booking_id"`
	Amount            float64    `db:"amount"`
	Method            string     `db:"method"`
	ExternalReference string     `db:"external_reference"`
	RedeemCode        *string    `db:"redeem_code"`
	Status            string     `db:"status"`
	FundsStatus       string     `db:"funds_status"`
	PlatformFee       float64    `db:"platform_fee"`
	ProviderAmount    float64    `db:"provider_amount"`
	IsAdvancePayment  bool       `db:"is_advance_payment"`
	PayerEmail        string     `db:"payer_email"`
	PayerName         string     `db:"payer_name"`
	Description       string     `db:"description"`
	CompletedAt       *time.Time `db:"completed_at"`
	ReleasedAt        *time.Time `db:"released_at"`
	model.Metadata
}

func (p Payment) IsTerminal() bool {
	return p.Status != StatusPending
}

// GatewayTracked reports whether the gateway owns this payment's status.
func (p Payment) GatewayTracked() bool {
	return p.Method != MethodBitcoin
}

// MapGatewayStatus translates a gateway status into the ledger vocabulary.
func MapGatewayStatus(status string) string {
	switch status {
	case "approved":
		return StatusCompleted
	case "rejected":
		return StatusFailed
	case "cancelled":
		return StatusCancelled
	case "refunded":
		return StatusRefunded
	default:
		return StatusPending
	}
}
