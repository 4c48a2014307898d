package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/ledger"
	"auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/internal/store"
	"auction-engine/utils"
)

// Manager drives auction status transitions from wall-clock time: a periodic
// sweep promotes due scheduled auctions to running and closes expired running
// auctions, computing the winner from the bid ledger. Admin actions (forced
// end, cancellation) go through the same transition paths.
type Manager struct {
	store    store.AuctionStore
	ledger   ledger.BidLedger
	events   notifier.Publisher
	interval time.Duration
	now      func() time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock injects the wall-clock source, used by tests to pin time.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a lifecycle manager sweeping at the given interval.
func NewManager(auctionStore store.AuctionStore, bidLedger ledger.BidLedger, events notifier.Publisher, interval time.Duration, opts ...Option) *Manager {
	m := &Manager{
		store:    auctionStore,
		ledger:   bidLedger,
		events:   events,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run executes the sweep loop until ctx is cancelled. A failed sweep is
// logged and retried on the next tick; a missed sweep is self-healing because
// the bid path performs its own inline expiry check.
func (m *Manager) Run(ctx context.Context) {
	utils.Info("lifecycle: starting sweep loop", map[string]any{"interval": m.interval.String()})

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Info("lifecycle: stopping sweep loop", nil)
			return
		case <-ticker.C:
			if err := m.Sweep(); err != nil {
				utils.Error("lifecycle: sweep failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

// Sweep performs one pass: scheduled auctions whose start time has arrived
// begin running, running auctions past their end time are ended. Per-auction
// failures are collected so one bad record cannot stall the rest.
func (m *Manager) Sweep() error {
	now := m.now()
	var firstErr error

	for _, auction := range m.store.ListByStatus(models.StatusScheduled) {
		if auction.StartAt.After(now) {
			continue
		}
		if err := m.startAuction(auction); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, auction := range m.store.ListByStatus(models.StatusRunning) {
		if auction.EndAt.After(now) {
			continue
		}
		if _, err := m.endAuction(auction.AuctionID); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// ForceEnd terminates a running auction immediately through the same
// winner-computation path as the sweep. Ending an already-ended auction is a
// no-op returning the recorded terminal state, so a concurrent sweep and a
// manual trigger cannot fail each other.
func (m *Manager) ForceEnd(auctionID string) (models.Auction, error) {
	return m.endAuction(auctionID)
}

// Cancel transitions a scheduled or running auction to cancelled. No winner
// is computed. Terminal auctions reject with ErrInvalidTransition.
func (m *Manager) Cancel(auctionID string) error {
	auction, err := m.store.Get(auctionID)
	if err != nil {
		return fmt.Errorf("lifecycle: failed to read auction %s: %w", auctionID, err)
	}

	if err := m.store.SetStatus(auctionID, models.StatusCancelled, nil); err != nil {
		return fmt.Errorf("lifecycle: failed to cancel auction %s: %w", auctionID, err)
	}

	utils.AuctionsCancelledTotal.Inc()
	utils.Info("lifecycle: auction cancelled", map[string]any{"auction_id": auctionID})
	m.publish(auctionID, notifier.NewStatusChanged(auctionID, auction.Status, models.StatusCancelled))
	return nil
}

// startAuction promotes one scheduled auction to running.
func (m *Manager) startAuction(auction models.Auction) error {
	if err := m.store.SetStatus(auction.AuctionID, models.StatusRunning, nil); err != nil {
		// Lost a race with a cancel; nothing to do.
		if errors.Is(err, auctionerrors.ErrInvalidTransition) {
			return nil
		}
		return fmt.Errorf("lifecycle: failed to start auction %s: %w", auction.AuctionID, err)
	}

	utils.Info("lifecycle: auction started", map[string]any{"auction_id": auction.AuctionID})
	m.publish(auction.AuctionID, notifier.NewStatusChanged(auction.AuctionID, models.StatusScheduled, models.StatusRunning))
	return nil
}

// endAuction closes one auction: winner = highest ledger bid (nil when no
// bids were placed), final price = the auction's current price.
func (m *Manager) endAuction(auctionID string) (models.Auction, error) {
	auction, err := m.store.Get(auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("lifecycle: failed to read auction %s: %w", auctionID, err)
	}

	// Idempotence: a second end of the same auction reports the recorded
	// terminal state instead of an error.
	if auction.Status == models.StatusEnded {
		return auction, nil
	}

	var winnerRef *string
	highest, err := m.ledger.HighestBid(auctionID)
	switch {
	case err == nil:
		winnerRef = &highest.BidderRef
	case errors.Is(err, auctionerrors.ErrNoBids):
		// Auction closes without a winner.
	default:
		return models.Auction{}, fmt.Errorf("lifecycle: failed to determine winner for auction %s: %w", auctionID, err)
	}

	if err := m.store.SetStatus(auctionID, models.StatusEnded, winnerRef); err != nil {
		// A concurrent sweep or manual trigger may have ended it first;
		// re-read and treat that as the no-op case.
		if errors.Is(err, auctionerrors.ErrInvalidTransition) {
			ended, readErr := m.store.Get(auctionID)
			if readErr == nil && ended.Status == models.StatusEnded {
				return ended, nil
			}
		}
		return models.Auction{}, fmt.Errorf("lifecycle: failed to end auction %s: %w", auctionID, err)
	}

	ended, err := m.store.Get(auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("lifecycle: failed to re-read ended auction %s: %w", auctionID, err)
	}

	utils.AuctionsEndedTotal.Inc()
	utils.Info("lifecycle: auction ended", map[string]any{
		"auction_id":  auctionID,
		"winner_ref":  winnerRef,
		"final_price": ended.CurrentPrice.String(),
	})
	m.publish(auctionID, notifier.NewStatusChanged(auctionID, auction.Status, models.StatusEnded))
	m.publish(auctionID, notifier.NewAuctionEnded(auctionID, winnerRef, ended.CurrentPrice))
	return ended, nil
}

// publish delivers an event best-effort; notifier failures are logged, never
// surfaced to lifecycle callers.
func (m *Manager) publish(auctionID string, event notifier.Event) {
	if err := m.events.Publish(auctionID, event); err != nil {
		utils.Error("lifecycle: failed to publish event", map[string]any{
			"auction_id": auctionID,
			"kind":       string(event.Kind),
			"error":      err.Error(),
		})
	}
}
