package dto

import (
	"marketplace/internal/domains/booking/model"
	"marketplace/shared"
	gDto "marketplace/shared/dto"
	gModel "marketplace/shared/model"
	"marketplace/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type CreateOfferRequest struct {
	ProfessionalID string  `json:"professional_id" validate:"required,uuid"`
	ScheduledDate  string  `json:"scheduled_date"  validate:"required,datetime=2006-01-02"`
	StartTime      string  `json:"start_time"      validate:"required,datetime=15:04"`
	EndTime        string  `json:"end_time"        validate:"required,datetime=15:04"`
	Description    string  `json:"description"     validate:"required,min=5,max=1000"`
	Price          float64 `json:"price"           validate:"gt=0"`
}

func (c *CreateOfferRequest) ToModel(clientID string) (model.Booking, error) {
	start, err := timezone.Slot(c.ScheduledDate, c.StartTime)
	if err != nil {
		return model.Booking{}, err
	}

	end, err := timezone.Slot(c.ScheduledDate, c.EndTime)
	if err != nil {
		return model.Booking{}, err
	}

	if !end.After(start) {
		return model.Booking{}, ErrEndBeforeStart
	}

	startTime, endTime := c.StartTime, c.EndTime

	return model.Booking{
		ID:             uuid.NewString(),
		ClientID:       clientID,
		ProfessionalID: c.ProfessionalID,
		ScheduledDate:  start,
		StartTime:      &startTime,
		EndTime:        &endTime,
		Description:    c.Description,
		Price:          c.Price,
		Status:         model.StatusPending,
		PaymentStatus:  model.PaymentStatusUnpaid,
		Metadata:       gModel.NewMetadata(timezone.Now(), clientID),
	}, nil
}

// FromBid describes the service order born from an accepted auction bid.
type FromBid struct {
	AuctionID      string
	ClientID       string
	ProfessionalID string
	Description    string
	Price          float64
	ScheduledDate  time.Time
}

func (f FromBid) ToModel() model.Booking {
	auctionID := f.AuctionID

	return model.Booking{
		ID:             uuid.NewString(),
		ClientID:       f.ClientID,
		ProfessionalID: f.ProfessionalID,
		AuctionID:      &auctionID,
		ScheduledDate:  f.ScheduledDate,
		Description:    f.Description,
		Price:          f.Price,
		Status:         model.StatusAwaitingPayment,
		PaymentStatus:  model.PaymentStatusUnpaid,
		Metadata:       gModel.NewMetadata(timezone.Now(), f.ClientID),
	}
}

type BookingResponse struct {
	ID                  string  `json:"id"`
	ClientID            string  `json:"client_id"`
	ProfessionalID      string  `json:"professional_id"`
	AuctionID           *string `json:"auction_id,omitempty"`
	ScheduledDate       string  `json:"scheduled_date"`
	StartTime           *string `json:"start_time,omitempty"`
	EndTime             *string `json:"end_time,omitempty"`
	Description         string  `json:"description"`
	Price               float64 `json:"price"`
	Status              string  `json:"status"`
	PaymentStatus       string  `json:"payment_status"`
	ProviderCheckedIn   bool    `json:"provider_checked_in"`
	ProviderCheckedInAt *string `json:"provider_checked_in_at,omitempty"`
	ClientCheckedIn     bool    `json:"client_checked_in"`
	ClientCheckedInAt   *string `json:"client_checked_in_at,omitempty"`
	CompletedAt         *string `json:"completed_at,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.ClientID = model.ClientID
	r.ProfessionalID = model.ProfessionalID
	r.AuctionID = model.AuctionID
	r.ScheduledDate = model.ScheduledDate.Format(timezone.DateLayout)
	r.StartTime = model.StartTime
	r.EndTime = model.EndTime
	r.Description = model.Description
	r.Price = model.Price
	r.Status = model.Status
	r.PaymentStatus = model.PaymentStatus
	r.ProviderCheckedIn = model.ProviderCheckedIn
	r.ProviderCheckedInAt = formatTime(model.ProviderCheckedInAt)
	r.ClientCheckedIn = model.ClientCheckedIn
	r.ClientCheckedInAt = formatTime(model.ClientCheckedInAt)
	r.CompletedAt = formatTime(model.CompletedAt)
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// ConfirmationResponse is the check-in view used to decide whether service was delivered.
type ConfirmationResponse struct {
	Confirmed         bool `json:"confirmed"`
	ProviderCheckedIn bool `json:"provider_checked_in"`
	ClientCheckedIn   bool `json:"client_checked_in"`
}

func (r *ConfirmationResponse) FromModel(model model.Booking) {
	r.ProviderCheckedIn = model.ProviderCheckedIn
	r.ClientCheckedIn = model.ClientCheckedIn
	r.Confirmed = model.ProviderCheckedIn && model.ClientCheckedIn
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := timezone.Format(*t, time.RFC3339)

	return &formatted
}
