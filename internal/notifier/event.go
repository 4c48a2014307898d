package notifier

import (
	"time"

	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

// EventKind identifies the type of auction event carried by an Event.
type EventKind string

const (
	EventBidAccepted   EventKind = "bid_accepted"
	EventAuctionEnded  EventKind = "auction_ended"
	EventStatusChanged EventKind = "auction_status_changed"
)

// Event is a state-change notification for one auction. Only the fields
// relevant to the kind are populated.
type Event struct {
	Kind       EventKind           `json:"kind"`
	AuctionID  string              `json:"auction_id"`
	BidderRef  string              `json:"bidder_ref,omitempty"`
	Amount     *decimal.Decimal    `json:"amount,omitempty"`
	NewPrice   *decimal.Decimal    `json:"new_price,omitempty"`
	WinnerRef  *string             `json:"winner_ref,omitempty"`
	FinalPrice *decimal.Decimal    `json:"final_price,omitempty"`
	OldStatus  model.AuctionStatus `json:"old_status,omitempty"`
	NewStatus  model.AuctionStatus `json:"new_status,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewBidAccepted builds the event emitted after a bid commits.
func NewBidAccepted(bid model.Bid) Event {
	amount := bid.Amount
	return Event{
		Kind:       EventBidAccepted,
		AuctionID:  bid.AuctionID,
		BidderRef:  bid.BidderRef,
		Amount:     &amount,
		NewPrice:   &amount,
		OccurredAt: bid.PlacedAt,
	}
}

// NewAuctionEnded builds the end-of-auction event. winnerRef is nil when the
// auction closed without bids.
func NewAuctionEnded(auctionID string, winnerRef *string, finalPrice decimal.Decimal) Event {
	return Event{
		Kind:       EventAuctionEnded,
		AuctionID:  auctionID,
		WinnerRef:  winnerRef,
		FinalPrice: &finalPrice,
		OccurredAt: time.Now().UTC(),
	}
}

// NewStatusChanged builds a lifecycle transition event.
func NewStatusChanged(auctionID string, oldStatus, newStatus model.AuctionStatus) Event {
	return Event{
		Kind:       EventStatusChanged,
		AuctionID:  auctionID,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		OccurredAt: time.Now().UTC(),
	}
}
