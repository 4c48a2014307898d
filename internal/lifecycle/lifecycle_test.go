package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/ledger"
	"auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []notifier.Event
}

func (p *capturingPublisher) Publish(auctionID string, event notifier.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) byKind(kind notifier.EventKind) []notifier.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []notifier.Event
	for _, e := range p.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store   *store.MemoryStore
	ledger  *ledger.MemoryLedger
	events  *capturingPublisher
	manager *Manager
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  store.NewMemoryStore(),
		ledger: ledger.NewMemoryLedger(),
		events: &capturingPublisher{},
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.manager = NewManager(f.store, f.ledger, f.events, time.Second,
		WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) addAuction(t *testing.T, auctionID string, status models.AuctionStatus, startAt, endAt time.Time) {
	t.Helper()
	require.NoError(t, f.store.Create(models.Auction{
		AuctionID:    auctionID,
		ProductRef:   "product-" + auctionID,
		StartPrice:   decimal.NewFromInt(100),
		MinIncrement: decimal.NewFromInt(10),
		CurrentPrice: decimal.NewFromInt(100),
		StartAt:      startAt,
		EndAt:        endAt,
		Status:       status,
	}))
}

func (f *fixture) addBid(t *testing.T, auctionID, bidderRef string, amount int64, placedAt time.Time) {
	t.Helper()
	_, err := f.ledger.Append(models.Bid{
		BidID:     bidderRef + "-bid",
		AuctionID: auctionID,
		BidderRef: bidderRef,
		Amount:    decimal.NewFromInt(amount),
		PlacedAt:  placedAt,
	})
	require.NoError(t, err)
	auction, err := f.store.Get(auctionID)
	require.NoError(t, err)
	require.NoError(t, f.store.TryAdvancePrice(auctionID, auction.CurrentPrice, decimal.NewFromInt(amount)))
}

// Tests Sweep
func TestManager_Sweep(t *testing.T) {
	t.Parallel()

	t.Run("starts_due_scheduled_auction", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAuction(t, "a1", models.StatusScheduled, f.now.Add(-time.Minute), f.now.Add(time.Hour))

		require.NoError(t, f.manager.Sweep())

		auction, err := f.store.Get("a1")
		require.NoError(t, err)
		require.Equal(t, models.StatusRunning, auction.Status)

		changes := f.events.byKind(notifier.EventStatusChanged)
		require.Len(t, changes, 1)
		require.Equal(t, models.StatusScheduled, changes[0].OldStatus)
		require.Equal(t, models.StatusRunning, changes[0].NewStatus)
	})

	t.Run("starts_auction_exactly_at_start_time", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAuction(t, "a1", models.StatusScheduled, f.now, f.now.Add(time.Hour))

		require.NoError(t, f.manager.Sweep())

		auction, err := f.store.Get("a1")
		require.NoError(t, err)
		require.Equal(t, models.StatusRunning, auction.Status)
	})

	t.Run("leaves_future_scheduled_auction_alone", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAuction(t, "a1", models.StatusScheduled, f.now.Add(time.Minute), f.now.Add(time.Hour))

		require.NoError(t, f.manager.Sweep())

		auction, err := f.store.Get("a1")
		require.NoError(t, err)
		require.Equal(t, models.StatusScheduled, auction.Status)
		require.Empty(t, f.events.byKind(notifier.EventStatusChanged))
	})

	t.Run("ends_expired_running_auction_with_winner", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAuction(t, "a1", models.StatusRunning, f.now.Add(-2*time.Hour), f.now.Add(-time.Minute))
		f.addBid(t, "a1", "u1", 110, f.now.Add(-30*time.Minute))
		f.addBid(t, "a1", "u2", 130, f.now.Add(-10*time.Minute))

		require.NoError(t, f.manager.Sweep())

		auction, err := f.store.Get("a1")
		require.NoError(t, err)
		require.Equal(t, models.StatusEnded, auction.Status)
		require.NotNil(t, auction.WinnerRef)
		require.Equal(t, "u2", *auction.WinnerRef)

		ended := f.events.byKind(notifier.EventAuctionEnded)
		require.Len(t, ended, 1)
		require.Equal(t, "u2", *ended[0].WinnerRef)
		require.True(t, ended[0].FinalPrice.Equal(decimal.NewFromInt(130)))
	})

	t.Run("leaves_unexpired_running_auction_alone", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAuction(t, "a1", models.StatusRunning, f.now.Add(-time.Hour), f.now.Add(time.Minute))

		require.NoError(t, f.manager.Sweep())

		auction, err := f.store.Get("a1")
		require.NoError(t, err)
		require.Equal(t, models.StatusRunning, auction.Status)
	})

	t.Run("one_pass_handles_multiple_auctions", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAuction(t, "due", models.StatusScheduled, f.now.Add(-time.Minute), f.now.Add(time.Hour))
		f.addAuction(t, "future", models.StatusScheduled, f.now.Add(time.Hour), f.now.Add(2*time.Hour))
		f.addAuction(t, "expired", models.StatusRunning, f.now.Add(-2*time.Hour), f.now.Add(-time.Minute))
		f.addAuction(t, "live", models.StatusRunning, f.now.Add(-time.Hour), f.now.Add(time.Hour))

		require.NoError(t, f.manager.Sweep())

		expectStatus := map[string]models.AuctionStatus{
			"due":     models.StatusRunning,
			"future":  models.StatusScheduled,
			"expired": models.StatusEnded,
			"live":    models.StatusRunning,
		}
		for auctionID, want := range expectStatus {
			auction, err := f.store.Get(auctionID)
			require.NoError(t, err)
			require.Equal(t, want, auction.Status, "auction %s", auctionID)
		}
	})
}

// Tests ForceEnd
func TestManager_ForceEnd(t *testing.T) {
	t.Parallel()

	t.Run("ends_running_auction_with_winner", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAuction(t, "a1", models.StatusRunning, f.now.Add(-time.Hour), f.now.Add(time.Hour))
		f.addBid(t, "a1", "u1", 120, f.now.Add(-time.Minute))

		ended, err := f.manager.ForceEnd("a1")
		require.NoError(t, err)
		require.Equal(t, models.StatusEnded, ended.Status)
		require.NotNil(t, ended.WinnerRef)
		require.Equal(t, "u1", *ended.WinnerRef)
		require.True(t, ended.CurrentPrice.Equal(decimal.NewFromInt(120)))
	})

	t.Run("no_bids_ends_without_winner", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAuction(t, "a1", models.StatusRunning, f.now.Add(-time.Hour), f.now.Add(time.Hour))

		ended, err := f.manager.ForceEnd("a1")
		require.NoError(t, err)
		require.Equal(t, models.StatusEnded, ended.Status)
		require.Nil(t, ended.WinnerRef)
		require.True(t, ended.CurrentPrice.Equal(decimal.NewFromInt(100)), "price stays at start price")

		events := f.events.byKind(notifier.EventAuctionEnded)
		require.Len(t, events, 1)
		require.Nil(t, events[0].WinnerRef)
	})

	t.Run("second_end_is_a_noop", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAuction(t, "a1", models.StatusRunning, f.now.Add(-time.Hour), f.now.Add(time.Hour))
		f.addBid(t, "a1", "u1", 110, f.now)

		first, err := f.manager.ForceEnd("a1")
		require.NoError(t, err)

		second, err := f.manager.ForceEnd("a1")
		require.NoError(t, err)
		require.Equal(t, first, second)

		// Only the first end emits events.
		require.Len(t, f.events.byKind(notifier.EventAuctionEnded), 1)
	})

	t.Run("cancelled_auction_cannot_be_ended", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.addAuction(t, "a1", models.StatusCancelled, f.now.Add(-time.Hour), f.now.Add(time.Hour))

		_, err := f.manager.ForceEnd("a1")
		require.ErrorIs(t, err, auctionerrors.ErrInvalidTransition)
	})

	t.Run("missing_auction", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.manager.ForceEnd("ghost")
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})
}

// Tests Cancel
func TestManager_Cancel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		status        models.AuctionStatus
		expectedError error
	}{
		{name: "cancel_scheduled", status: models.StatusScheduled},
		{name: "cancel_running", status: models.StatusRunning},
		{name: "cancel_ended_rejected", status: models.StatusEnded, expectedError: auctionerrors.ErrInvalidTransition},
		{name: "cancel_cancelled_rejected", status: models.StatusCancelled, expectedError: auctionerrors.ErrInvalidTransition},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.addAuction(t, "a1", tc.status, f.now.Add(-time.Hour), f.now.Add(time.Hour))

			err := f.manager.Cancel("a1")

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)

			auction, getErr := f.store.Get("a1")
			require.NoError(t, getErr)
			require.Equal(t, models.StatusCancelled, auction.Status)
			require.Nil(t, auction.WinnerRef, "cancellation never records a winner")

			changes := f.events.byKind(notifier.EventStatusChanged)
			require.Len(t, changes, 1)
			require.Equal(t, tc.status, changes[0].OldStatus)
			require.Equal(t, models.StatusCancelled, changes[0].NewStatus)
		})
	}

	t.Run("missing_auction", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		err := f.manager.Cancel("ghost")
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})
}

// The sweep loop runs transitions on its own and stops when the context is
// cancelled.
func TestManager_Run(t *testing.T) {
	t.Parallel()

	auctionStore := store.NewMemoryStore()
	bidLedger := ledger.NewMemoryLedger()
	events := &capturingPublisher{}
	manager := NewManager(auctionStore, bidLedger, events, 5*time.Millisecond)

	now := time.Now()
	require.NoError(t, auctionStore.Create(models.Auction{
		AuctionID:    "a1",
		ProductRef:   "product-a1",
		StartPrice:   decimal.NewFromInt(100),
		MinIncrement: decimal.NewFromInt(10),
		CurrentPrice: decimal.NewFromInt(100),
		StartAt:      now.Add(-time.Hour),
		EndAt:        now.Add(-time.Minute),
		Status:       models.StatusRunning,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		auction, err := auctionStore.Get("a1")
		return err == nil && auction.Status == models.StatusEnded
	}, time.Second, 5*time.Millisecond, "sweep loop should end the expired auction")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
