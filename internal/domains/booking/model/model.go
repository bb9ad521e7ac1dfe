package model

import (
	"marketplace/shared/model"
	"slices"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                  = "id"
	FieldClientID            = "client_id"
	FieldProfessionalID      = "professional_id"
	FieldAuctionID           = "auction_id"
	FieldScheduledDate       = "scheduled_date"
	FieldStartTime           = "start_time"
	FieldEndTime             = "end_time"
	FieldDescription         = "description"
	FieldPrice               = "price"
	FieldStatus              = "status"
	FieldPaymentStatus       = "payment_status"
	FieldProviderCheckedIn   = "provider_checked_in"
	FieldProviderCheckedInAt = "provider_checked_in_at"
	FieldClientCheckedIn     = "client_checked_in"
	FieldClientCheckedInAt   = "client_checked_in_at"
	FieldCompletedAt         = "completed_at"
)

const (
	StatusPending            = "pending"
	StatusAwaitingAcceptance = "awaiting_acceptance"
	StatusAwaitingPayment    = "awaiting_payment"
	StatusAccepted           = "accepted"
	StatusInProgress         = "in_progress"
	StatusCompleted          = "completed"
	StatusDeclined           = "declined"
	StatusCancelled          = "cancelled"

	// StatusOneOf is the validator oneof list of every booking status.
	StatusOneOf = "pending awaiting_acceptance awaiting_payment accepted in_progress completed declined cancelled"
)

const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

var (
	// OpenStatuses can still be answered by the professional.
	OpenStatuses = []string{StatusPending, StatusAwaitingAcceptance}
	// ServiceStatuses accept check-ins and settle into completed.
	ServiceStatuses = []string{StatusAccepted, StatusInProgress}
	// CancellableStatuses precede service delivery.
	CancellableStatuses = []string{StatusPending, StatusAwaitingAcceptance, StatusAwaitingPayment, StatusAccepted}
)

type Booking struct {
	ID                  string     `db:"id"`
	ClientID            string     `db:"client_id"`
	ProfessionalID      string     `db:"professional_id"`
	AuctionID           *string    `db:"auction_id"`
	ScheduledDate       time.Time  `db:"scheduled_date"`
	StartTime           *string    `db:"start_time"`
	EndTime             *string    `db:"end_time"`
	Description         string     `db:"description"`
	Price               float64    `db:"price"`
	Status              string     `db:"status"`
	PaymentStatus       string     `db:"payment_status"`
	ProviderCheckedIn   bool       `db:"provider_checked_in"`
	ProviderCheckedInAt *time.Time `db:"provider_checked_in_at"`
	ClientCheckedIn     bool       `db:"client_checked_in"`
	ClientCheckedInAt   *time.Time `db:"client_checked_in_at"`
	CompletedAt         *time.Time `db:"completed_at"`
	model.Metadata
}

func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusDeclined || status == StatusCancelled
}

func (b Booking) InService() bool {
	return slices.Contains(ServiceStatuses, b.Status)
}

// IsParty reports whether userID is the client or the professional of the booking.
func (b Booking) IsParty(userID string) bool {
	return userID != "" && (userID == b.ClientID || userID == b.ProfessionalID)
}
