package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	StatusScheduled AuctionStatus = "scheduled"
	StatusRunning   AuctionStatus = "running"
	StatusEnded     AuctionStatus = "ended"
	StatusCancelled AuctionStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s AuctionStatus) IsTerminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
// Allowed: scheduled->running, running->ended, scheduled|running->cancelled.
func (s AuctionStatus) CanTransitionTo(next AuctionStatus) bool {
	switch next {
	case StatusRunning:
		return s == StatusScheduled
	case StatusEnded:
		return s == StatusRunning
	case StatusCancelled:
		return s == StatusScheduled || s == StatusRunning
	default:
		return false
	}
}

// Auction is the root entity of the bidding core. The product being sold is
// opaque to this service and referenced only by ProductRef.
type Auction struct {
	AuctionID    string          `json:"auction_id"`
	ProductRef   string          `json:"product_ref"`
	StartPrice   decimal.Decimal `json:"start_price"`
	MinIncrement decimal.Decimal `json:"min_increment"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	StartAt      time.Time       `json:"start_at"`
	EndAt        time.Time       `json:"end_at"`
	Status       AuctionStatus   `json:"status"`
	WinnerRef    *string         `json:"winner_ref,omitempty"`
}

// MinimumBid returns the lowest amount the next bid must reach.
func (a Auction) MinimumBid() decimal.Decimal {
	return a.CurrentPrice.Add(a.MinIncrement)
}

// Bid is an accepted bid on an auction. Bids are immutable once recorded;
// Seq is assigned by the ledger at append time and breaks placed_at ties
// deterministically.
type Bid struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderRef string          `json:"bidder_ref"`
	Amount    decimal.Decimal `json:"amount"`
	PlacedAt  time.Time       `json:"placed_at"`
	Seq       uint64          `json:"seq"`
}
