package notifier

import (
	"testing"
	"time"

	"auction-engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testBid(auctionID, bidderRef string, amount int64) models.Bid {
	return models.Bid{
		BidID:     bidderRef + "-bid",
		AuctionID: auctionID,
		BidderRef: bidderRef,
		Amount:    decimal.NewFromInt(amount),
		PlacedAt:  time.Now().UTC(),
	}
}

func receiveEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed before event arrived")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcaster_PublishAndSubscribe(t *testing.T) {
	b := NewBroadcaster(16)
	b.Start()
	defer b.Close()

	ch, err := b.Subscribe("a1")
	require.NoError(t, err)
	defer b.Unsubscribe("a1", ch)

	bid := testBid("a1", "u1", 110)
	require.NoError(t, b.Publish("a1", NewBidAccepted(bid)))

	event := receiveEvent(t, ch)
	require.Equal(t, EventBidAccepted, event.Kind)
	require.Equal(t, "a1", event.AuctionID)
	require.Equal(t, "u1", event.BidderRef)
	require.True(t, event.Amount.Equal(decimal.NewFromInt(110)))
}

func TestBroadcaster_EventsAreScopedPerAuction(t *testing.T) {
	b := NewBroadcaster(16)
	b.Start()
	defer b.Close()

	chA, err := b.Subscribe("a1")
	require.NoError(t, err)
	defer b.Unsubscribe("a1", chA)

	chB, err := b.Subscribe("a2")
	require.NoError(t, err)
	defer b.Unsubscribe("a2", chB)

	require.NoError(t, b.Publish("a1", NewBidAccepted(testBid("a1", "u1", 110))))

	event := receiveEvent(t, chA)
	require.Equal(t, "a1", event.AuctionID)

	select {
	case event := <-chB:
		t.Fatalf("subscriber of a2 received event for %s", event.AuctionID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_FanOutToMultipleSubscribers(t *testing.T) {
	b := NewBroadcaster(16)
	b.Start()
	defer b.Close()

	first, err := b.Subscribe("a1")
	require.NoError(t, err)
	defer b.Unsubscribe("a1", first)

	second, err := b.Subscribe("a1")
	require.NoError(t, err)
	defer b.Unsubscribe("a1", second)

	require.NoError(t, b.Publish("a1", NewBidAccepted(testBid("a1", "u1", 110))))

	require.Equal(t, EventBidAccepted, receiveEvent(t, first).Kind)
	require.Equal(t, EventBidAccepted, receiveEvent(t, second).Kind)
}

// A slow subscriber loses events once its buffer is full; the publisher never
// blocks and fast subscribers are unaffected.
func TestBroadcaster_SlowSubscriberDropsEvents(t *testing.T) {
	b := NewBroadcaster(1)
	b.Start()
	defer b.Close()

	slow, err := b.Subscribe("a1")
	require.NoError(t, err)
	defer b.Unsubscribe("a1", slow)

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Publish("a1", NewBidAccepted(testBid("a1", "u1", int64(110+i*10)))))
	}

	// Buffer of one: the first event is retained, the rest were dropped.
	event := receiveEvent(t, slow)
	require.True(t, event.Amount.Equal(decimal.NewFromInt(110)))

	select {
	case event, ok := <-slow:
		if ok {
			// A second event may have squeezed in while the dispatcher raced
			// the reads; anything beyond that proves blocking, so drain once.
			require.True(t, event.Amount.GreaterThan(decimal.NewFromInt(110)))
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_PublishWithoutSubscribers(t *testing.T) {
	b := NewBroadcaster(16)
	b.Start()
	defer b.Close()

	require.NoError(t, b.Publish("a1", NewBidAccepted(testBid("a1", "u1", 110))))
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster(16)
	b.Start()
	defer b.Close()

	ch, err := b.Subscribe("a1")
	require.NoError(t, err)

	b.Unsubscribe("a1", ch)

	select {
	case _, ok := <-ch:
		require.False(t, ok, "channel should be closed after unsubscribe")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}

	// Unsubscribing twice is harmless.
	b.Unsubscribe("a1", ch)
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster(16)
	b.Start()

	ch, err := b.Subscribe("a1")
	require.NoError(t, err)

	b.Close()

	select {
	case _, ok := <-ch:
		require.False(t, ok, "subscriber channel should be closed on shutdown")
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed on shutdown")
	}

	require.ErrorIs(t, b.Publish("a1", NewBidAccepted(testBid("a1", "u1", 110))), ErrClosed)
	_, err = b.Subscribe("a1")
	require.ErrorIs(t, err, ErrClosed)

	// Close is idempotent.
	b.Close()
}

func TestBroadcaster_PublishBeforeStart(t *testing.T) {
	b := NewBroadcaster(16)
	defer b.Close()

	require.ErrorIs(t, b.Publish("a1", NewBidAccepted(testBid("a1", "u1", 110))), ErrClosed)
}
