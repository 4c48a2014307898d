package ledger

import (
	"fmt"
	"sync"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

//go:generate mockgen -package=ledger -destination=mock_ledger.go -source=ledger.go

// BidLedger is the append-only record of accepted bids, queryable per auction.
// Entries are never mutated after Append.
type BidLedger interface {
	Append(bid model.Bid) (model.Bid, error)
	HighestBid(auctionID string) (model.Bid, error)
	ListRecent(auctionID string, limit int) ([]model.Bid, error)
}

// MemoryLedger is a concurrency-safe in-memory implementation of BidLedger
type MemoryLedger struct {
	mu      sync.RWMutex
	bids    map[string][]model.Bid // key: auctionID -> accepted bids in insertion order
	nextSeq map[string]uint64      // key: auctionID -> next insertion sequence
}

// NewMemoryLedger creates a new in-memory ledger instance
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		bids:    make(map[string][]model.Bid),
		nextSeq: make(map[string]uint64),
	}
}

// Append records an accepted bid and assigns its insertion sequence. It
// returns the stored bid including the assigned sequence.
func (l *MemoryLedger) Append(bid model.Bid) (model.Bid, error) {
	if bid.AuctionID == "" {
		return model.Bid{}, fmt.Errorf("append bid %s: %w - missing auction id", bid.BidID, auctionerrors.ErrInvalidBid)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bid.Seq = l.nextSeq[bid.AuctionID]
	l.nextSeq[bid.AuctionID]++
	l.bids[bid.AuctionID] = append(l.bids[bid.AuctionID], bid)
	return bid, nil
}

// HighestBid returns the bid with the greatest amount for an auction.
// Ties break by earliest placed_at, then by lowest insertion sequence, so the
// result is a deterministic total order used for winner determination.
func (l *MemoryLedger) HighestBid(auctionID string) (model.Bid, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	bids, ok := l.bids[auctionID]
	if !ok || len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if outranks(b, highest) {
			highest = b
		}
	}
	return highest, nil
}

// outranks reports whether a beats b in the winner order.
func outranks(a, b model.Bid) bool {
	switch a.Amount.Cmp(b.Amount) {
	case 1:
		return true
	case -1:
		return false
	}
	if !a.PlacedAt.Equal(b.PlacedAt) {
		return a.PlacedAt.Before(b.PlacedAt)
	}
	return a.Seq < b.Seq
}

// ListRecent returns up to limit accepted bids for an auction, newest first.
func (l *MemoryLedger) ListRecent(auctionID string, limit int) ([]model.Bid, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("list recent bids for auction %s: %w - non-positive limit", auctionID, auctionerrors.ErrInvalidBid)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	bids := l.bids[auctionID]
	if len(bids) < limit {
		limit = len(bids)
	}

	recent := make([]model.Bid, 0, limit)
	for i := len(bids) - 1; i >= len(bids)-limit; i-- {
		recent = append(recent, bids[i])
	}
	return recent, nil
}
