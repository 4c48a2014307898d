package store

import (
	"fmt"
	"sync"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -package=store -destination=mock_store.go -source=store.go

// AuctionStore is the durable record store for auction state. TryAdvancePrice
// is the single operation that must be atomic: it is the compare-and-swap that
// serializes concurrent bidders racing to raise the price.
type AuctionStore interface {
	Get(auctionID string) (model.Auction, error)
	Create(auction model.Auction) error
	TryAdvancePrice(auctionID string, expected, next decimal.Decimal) error
	SetStatus(auctionID string, next model.AuctionStatus, winnerRef *string) error
	ListByStatus(status model.AuctionStatus) []model.Auction
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[string]model.Auction // key: auctionID
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[string]model.Auction),
	}
}

// Get returns the auction with the given id
func (s *MemoryStore) Get(auctionID string) (model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// Create stores a new auction record. Spec validation (price bounds, time
// window) belongs to the bidding service; the store only guards identity.
func (s *MemoryStore) Create(auction model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[auction.AuctionID]; ok {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, auctionerrors.ErrDuplicateID)
	}
	s.auctions[auction.AuctionID] = auction
	return nil
}

// TryAdvancePrice atomically moves current_price from expected to next.
// It fails with ErrPriceConflict when another bid already advanced the price
// past what the caller read, which is what prevents lost updates under
// concurrent bidding. Accepted prices are strictly increasing, so the price
// itself serves as the version token. The swap also re-checks the status
// under the same lock: an auction that ended or was cancelled after the
// caller's read rejects with ErrAuctionNotRunning, so no bid can commit
// against a closed auction.
func (s *MemoryStore) TryAdvancePrice(auctionID string, expected, next decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return fmt.Errorf("advance price for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if auction.Status != model.StatusRunning {
		return fmt.Errorf("advance price for auction %s (status %s): %w", auctionID, auction.Status, auctionerrors.ErrAuctionNotRunning)
	}
	if !auction.CurrentPrice.Equal(expected) {
		return fmt.Errorf("advance price for auction %s: %w", auctionID, auctionerrors.ErrPriceConflict)
	}
	if next.Cmp(expected) <= 0 {
		return fmt.Errorf("advance price for auction %s: new price must exceed current: %w", auctionID, auctionerrors.ErrInvalidBid)
	}

	auction.CurrentPrice = next
	s.auctions[auctionID] = auction
	return nil
}

// SetStatus transitions the auction to next, enforcing the state machine.
// winnerRef is recorded only on the transition to ended; nil means the
// auction ended without bids.
func (s *MemoryStore) SetStatus(auctionID string, next model.AuctionStatus, winnerRef *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return fmt.Errorf("set status for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if !auction.Status.CanTransitionTo(next) {
		return fmt.Errorf("set status for auction %s (%s -> %s): %w", auctionID, auction.Status, next, auctionerrors.ErrInvalidTransition)
	}

	auction.Status = next
	if next == model.StatusEnded {
		auction.WinnerRef = winnerRef
	}
	s.auctions[auctionID] = auction
	return nil
}

// ListByStatus returns all auctions currently in the given status. Used by
// the lifecycle sweep to find due transitions.
func (s *MemoryStore) ListByStatus(status model.AuctionStatus) []model.Auction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var auctions []model.Auction
	for _, auction := range s.auctions {
		if auction.Status == status {
			auctions = append(auctions, auction)
		}
	}
	return auctions
}
