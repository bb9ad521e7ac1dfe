package dto

import (
	"marketplace/internal/domains/auction/model"
	"marketplace/shared"
	gDto "marketplace/shared/dto"
	gModel "marketplace/shared/model"
	"marketplace/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type CreateAuctionRequest struct {
	Title        string    `json:"title"         validate:"required,min=3,max=150"`
	Description  string    `json:"description"   validate:"required,min=5,max=2000"`
	Category     string    `json:"category"      validate:"required,max=60"`
	InitialPrice float64   `json:"initial_price" validate:"gt=0"`
	EndDate      time.Time `json:"end_date"      validate:"required"`
}

func (c *CreateAuctionRequest) ToModel(creatorID string) model.Auction {
	return model.Auction{
		ID:           uuid.NewString(),
		CreatorID:    creatorID,
		Title:        c.Title,
		Description:  c.Description,
		Category:     c.Category,
		InitialPrice: c.InitialPrice,
		Status:       model.StatusActive,
		EndDate:      c.EndDate,
		Metadata:     gModel.NewMetadata(timezone.Now(), creatorID),
	}
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

type AuctionResponse struct {
	ID           string  `json:"id"`
	CreatorID    string  `json:"creator_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	InitialPrice float64 `json:"initial_price"`
	Status       string  `json:"status"`
	EndDate      string  `json:"end_date"`
	WinningBidID *string `json:"winning_bid_id,omitempty"`
	gDto.Metadata
}

func (r *AuctionResponse) FromModel(model model.Auction) {
	r.ID = model.ID
	r.CreatorID = model.CreatorID
	r.Title = model.Title
	r.Description = model.Description
	r.Category = model.Category
	r.InitialPrice = model.InitialPrice
	r.Status = model.Status
	r.EndDate = timezone.Format(model.EndDate, time.RFC3339)
	r.WinningBidID = model.WinningBidID
	r.Metadata.FromModel(model.Metadata)
}

type GetAuctionsResponse struct {
	Auctions  []AuctionResponse `json:"auctions"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetAuctionsResponse) FromModels(models []model.Auction, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Auctions = make([]AuctionResponse, len(models))
	for i, mod := range models {
		r.Auctions[i].FromModel(mod)
	}
}

type BidResponse struct {
	ID          string  `json:"id"`
	AuctionID   string  `json:"auction_id"`
	BidderID    string  `json:"bidder_id"`
	Amount      float64 `json:"amount"`
	ServiceFee  float64 `json:"service_fee"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

func (r *BidResponse) FromModel(model model.Bid) {
	r.ID = model.ID
	r.AuctionID = model.AuctionID
	r.BidderID = model.BidderID
	r.Amount = model.Amount
	r.ServiceFee = model.ServiceFee
	r.TotalAmount = model.TotalAmount
	r.Status = model.Status
	r.CreatedAt = timezone.Format(model.CreatedAt, time.RFC3339)
}

func FromBids(bids []model.Bid) []BidResponse {
	res := make([]BidResponse, len(bids))
	for i, bid := range bids {
		res[i].FromModel(bid)
	}

	return res
}

type AcceptBidResponse struct {
	AuctionID string `json:"auction_id"`
	BidID     string `json:"bid_id"`
	BookingID string `json:"booking_id"`
}
