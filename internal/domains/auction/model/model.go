package model

import (
	"marketplace/shared/model"
	"time"
)

const (
	TableName  = "auctions"
	EntityName = "auction"

	FieldID           = "id"
	FieldCreatorID    = "creator_id"
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldCategory     = "category"
	FieldInitialPrice = "initial_price"
	FieldStatus       = "status"
	FieldEndDate      = "end_date"
	FieldWinningBidID = "winning_bid_id"
)

const (
	BidTableName  = "auction_bids"
	BidEntityName = "auction_bid"

	BidFieldID          = "id"
	BidFieldAuctionID   = "auction_id"
	BidFieldBidderID    = "bidder_id"
	BidFieldAmount      = "amount"
	BidFieldServiceFee  = "service_fee"
	BidFieldTotalAmount = "total_amount"
	BidFieldStatus      = "status"
	BidFieldCreatedAt   = "created_at"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	StatusOneOf = "active completed cancelled"
)

const (
	BidStatusPending  = "pending"
	BidStatusAccepted = "accepted"
	BidStatusRejected = "rejected"
)

type Auction struct {
	ID           string    `db:"id"`
	CreatorID    string    `db:"creator_id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Category     string    `db:"category"`
	InitialPrice float64   `db:"initial_price"`
	Status       string    `db:"status"`
	EndDate      time.Time `db:"end_date"`
	WinningBidID *string   `db:"winning_bid_id"`
	model.Metadata
}

// OpenAt reports whether the auction still takes bids at now.
func (a Auction) OpenAt(now time.Time) bool {
	return a.Status == StatusActive && now.Before(a.EndDate)
}

// Bid is immutable once it leaves pending.
type Bid struct {
	ID          string    `db:"id"`
	AuctionID   string    `db:"auction_id"`
	BidderID    string    `db:"bidder_id"`
	Amount      float64   `db:"amount"`
	ServiceFee  float64   `db:"service_fee"`
	TotalAmount float64   `db:"total_amount"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}
