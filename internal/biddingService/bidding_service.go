package bidding

import (
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/ledger"
	"auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/internal/store"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// defaultMaxAttempts bounds the CAS retry loop in PlaceBid. Exhausting it
// surfaces ErrContention instead of spinning forever.
const defaultMaxAttempts = 5

// BiddingService implements bid validation and acceptance: the accept/reject
// decision and the atomic price advance that applies an accepted bid exactly
// once.
type BiddingService struct {
	store       store.AuctionStore
	ledger      ledger.BidLedger
	events      notifier.Publisher
	maxAttempts int
	now         func() time.Time
}

// Option customizes a BiddingService.
type Option func(*BiddingService)

// WithMaxAttempts overrides the CAS retry bound.
func WithMaxAttempts(n int) Option {
	return func(s *BiddingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithClock injects the wall-clock source, used by tests to pin time.
func WithClock(now func() time.Time) Option {
	return func(s *BiddingService) {
		s.now = now
	}
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(auctionStore store.AuctionStore, bidLedger ledger.BidLedger, events notifier.Publisher, opts ...Option) *BiddingService {
	s := &BiddingService{
		store:       auctionStore,
		ledger:      bidLedger,
		events:      events,
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAuctionSpec carries the vendor/admin parameters for flagging a
// product as a live auction.
type CreateAuctionSpec struct {
	ProductRef   string
	StartPrice   decimal.Decimal
	MinIncrement decimal.Decimal
	StartAt      time.Time
	EndAt        time.Time
}

// CreateAuction validates the spec and stores the new auction. An auction
// whose window already contains the current time starts out running.
func (s *BiddingService) CreateAuction(spec CreateAuctionSpec) (models.Auction, error) {
	if spec.ProductRef == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing product ref", auctionerrors.ErrInvalidSpec)
	}
	if spec.StartPrice.Sign() < 0 {
		return models.Auction{}, fmt.Errorf("service: %w - negative start price", auctionerrors.ErrInvalidSpec)
	}
	if spec.MinIncrement.Sign() <= 0 {
		return models.Auction{}, fmt.Errorf("service: %w - non-positive min increment", auctionerrors.ErrInvalidSpec)
	}
	if !spec.EndAt.After(spec.StartAt) {
		return models.Auction{}, fmt.Errorf("service: %w - end_at must be after start_at", auctionerrors.ErrInvalidSpec)
	}

	now := s.now()
	if !spec.EndAt.After(now) {
		return models.Auction{}, fmt.Errorf("service: %w - end_at is in the past", auctionerrors.ErrInvalidSpec)
	}

	status := models.StatusScheduled
	if !now.Before(spec.StartAt) {
		status = models.StatusRunning
	}

	auction := models.Auction{
		AuctionID:    utils.GenerateID(),
		ProductRef:   spec.ProductRef,
		StartPrice:   spec.StartPrice,
		MinIncrement: spec.MinIncrement,
		CurrentPrice: spec.StartPrice,
		StartAt:      spec.StartAt,
		EndAt:        spec.EndAt,
		Status:       status,
	}

	if err := s.store.Create(auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction for product %s: %w", spec.ProductRef, err)
	}

	utils.AuctionsCreatedTotal.Inc()
	return auction, nil
}

// PlaceBid decides whether the proposed bid is accepted and, on acceptance,
// advances the auction price exactly once.
//
// The loop below is the load-bearing concurrency mechanism: validation is
// re-run against a fresh read after every CAS conflict, so a bid either wins
// a price advance, is rejected as stale (BidTooLow against the new price), or
// runs out of attempts and is rejected with Contention. No bid is silently
// dropped.
func (s *BiddingService) PlaceBid(auctionID, bidderRef string, amount decimal.Decimal) (models.Bid, error) {
	if auctionID == "" || bidderRef == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing auctionID or bidderRef", auctionerrors.ErrInvalidBid)
	}
	if amount.Sign() <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		auction, err := s.store.Get(auctionID)
		if err != nil {
			return models.Bid{}, fmt.Errorf("service: failed to read auction %s: %w", auctionID, err)
		}

		now := s.now()
		// An auction past end_at is treated as ended even before the sweep
		// has transitioned it, closing the race between expiry and the
		// scheduled sweep.
		if auction.Status != models.StatusRunning || !now.Before(auction.EndAt) {
			utils.BidsRejectedTotal.WithLabelValues("not_running").Inc()
			return models.Bid{}, fmt.Errorf("service: %w - auction %s status is %s", auctionerrors.ErrAuctionNotRunning, auctionID, auction.Status)
		}

		minBid := auction.MinimumBid()
		if amount.Cmp(minBid) < 0 {
			utils.BidsRejectedTotal.WithLabelValues("too_low").Inc()
			return models.Bid{}, fmt.Errorf("service: %w - minimum acceptable bid is %s", auctionerrors.ErrBidTooLow, minBid)
		}

		err = s.store.TryAdvancePrice(auctionID, auction.CurrentPrice, amount)
		if errors.Is(err, auctionerrors.ErrPriceConflict) {
			// Another bid won this price point; re-read and revalidate.
			utils.BidCASConflictsTotal.Inc()
			continue
		}
		if errors.Is(err, auctionerrors.ErrAuctionNotRunning) {
			// The auction closed between the validation read and the swap.
			utils.BidsRejectedTotal.WithLabelValues("not_running").Inc()
			return models.Bid{}, fmt.Errorf("service: auction %s closed before the bid committed: %w", auctionID, err)
		}
		if err != nil {
			return models.Bid{}, fmt.Errorf("service: failed to advance price for auction %s: %w", auctionID, err)
		}

		bid := models.Bid{
			BidID:     utils.GenerateID(),
			AuctionID: auctionID,
			BidderRef: bidderRef,
			Amount:    amount,
			PlacedAt:  now.UTC(),
		}
		stored, err := s.ledger.Append(bid)
		if err != nil {
			// The price advance is already committed; surface the ledger
			// failure rather than pretend the bid was recorded.
			return models.Bid{}, fmt.Errorf("service: failed to record bid for auction %s: %w", auctionID, err)
		}

		// The state change is committed; event delivery is best-effort and
		// never propagates back to the bidder.
		if err := s.events.Publish(auctionID, notifier.NewBidAccepted(stored)); err != nil {
			utils.Error("service: failed to publish bid_accepted event", map[string]any{
				"auction_id": auctionID,
				"bid_id":     stored.BidID,
				"error":      err.Error(),
			})
		}

		utils.BidsAcceptedTotal.Inc()
		return stored, nil
	}

	utils.BidsRejectedTotal.WithLabelValues("contention").Inc()
	return models.Bid{}, fmt.Errorf("service: %w - auction %s, %d attempts", auctionerrors.ErrContention, auctionID, s.maxAttempts)
}

// Snapshot is the point-in-time auction view clients read before subscribing
// to the event stream.
type Snapshot struct {
	AuctionID    string               `json:"auction_id"`
	Status       models.AuctionStatus `json:"status"`
	CurrentPrice decimal.Decimal      `json:"current_price"`
	EndAt        time.Time            `json:"end_at"`
	WinnerRef    *string              `json:"winner_ref,omitempty"`
}

// GetSnapshot returns the current auction state for UI initialization.
func (s *BiddingService) GetSnapshot(auctionID string) (Snapshot, error) {
	if auctionID == "" {
		return Snapshot{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	auction, err := s.store.Get(auctionID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	return Snapshot{
		AuctionID:    auction.AuctionID,
		Status:       auction.Status,
		CurrentPrice: auction.CurrentPrice,
		EndAt:        auction.EndAt,
		WinnerRef:    auction.WinnerRef,
	}, nil
}

// GetRecentBids returns up to limit accepted bids for an auction, newest first.
func (s *BiddingService) GetRecentBids(auctionID string, limit int) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	if _, err := s.store.Get(auctionID); err != nil {
		return nil, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	bids, err := s.ledger.ListRecent(auctionID, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// ListAuctions returns all auctions currently in the given status.
func (s *BiddingService) ListAuctions(status models.AuctionStatus) []models.Auction {
	return s.store.ListByStatus(status)
}
