package helpers

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type CreateAuctionRequest struct {
	ProductRef   string          `json:"product_ref" binding:"required"`
	StartPrice   decimal.Decimal `json:"start_price"`
	MinIncrement decimal.Decimal `json:"min_increment" binding:"required"`
	StartAt      *time.Time      `json:"start_at"`
	EndAt        time.Time       `json:"end_at" binding:"required"`
}

type PlaceBidRequest struct {
	BidderRef string          `json:"bidder_ref" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

type AuctionResponse struct {
	AuctionID    string          `json:"auction_id"`
	ProductRef   string          `json:"product_ref"`
	StartPrice   decimal.Decimal `json:"start_price"`
	MinIncrement decimal.Decimal `json:"min_increment"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	StartAt      string          `json:"start_at"`
	EndAt        string          `json:"end_at"`
	Status       string          `json:"status"`
	WinnerRef    *string         `json:"winner_ref,omitempty"`
}

type BidResponse struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderRef string          `json:"bidder_ref"`
	Amount    decimal.Decimal `json:"amount"`
	PlacedAt  string          `json:"placed_at"`
}

type SnapshotResponse struct {
	AuctionID    string          `json:"auction_id"`
	Status       string          `json:"status"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	EndAt        string          `json:"end_at"`
	WinnerRef    *string         `json:"winner_ref,omitempty"`
}
