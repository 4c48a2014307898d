package notifier

import (
	"context"
	"errors"
	"sync"

	"auction-engine/utils"

	"github.com/smallnest/chanx"
)

// ErrClosed is returned by Publish and Subscribe after Close.
var ErrClosed = errors.New("broadcaster is closed")

// Publisher is the write side consumed by the bidding service and the
// lifecycle manager. Delivery is best-effort; a Publish error never rolls
// back the state change that produced the event.
type Publisher interface {
	Publish(auctionID string, event Event) error
}

// Subscriber is the read side consumed by the SSE endpoint.
type Subscriber interface {
	Subscribe(auctionID string) (<-chan Event, error)
	Unsubscribe(auctionID string, ch <-chan Event)
}

type publishRequest struct {
	auctionID string
	event     Event
}

// Broadcaster fans auction events out to per-auction subscriber sets.
// Publish only enqueues onto an unbounded queue drained by a single
// dispatcher goroutine, so the bid-acceptance path never waits on slow
// subscribers. Subscriber channels are buffered; when a subscriber's buffer
// is full the event is dropped for that subscriber only.
type Broadcaster struct {
	mu       sync.RWMutex
	active   bool
	channels map[string]*channel

	queue      *chanx.UnboundedChan[publishRequest]
	bufferSize int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewBroadcaster creates a broadcaster whose subscriber channels buffer up to
// bufferSize events. Call Start before Publish or Subscribe.
func NewBroadcaster(bufferSize int) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Broadcaster{
		channels:   make(map[string]*channel),
		queue:      chanx.NewUnboundedChan[publishRequest](ctx, 64),
		bufferSize: bufferSize,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the dispatcher goroutine.
func (b *Broadcaster) Start() {
	b.mu.Lock()
	b.active = true
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-b.ctx.Done():
				return
			case req, ok := <-b.queue.Out:
				if !ok {
					return
				}
				b.mu.RLock()
				ch, exists := b.channels[req.auctionID]
				b.mu.RUnlock()
				if !exists {
					continue
				}
				dropped := ch.broadcast(req.event)
				if dropped > 0 {
					utils.Warn("notifier: dropped event for slow subscribers", map[string]any{
						"auction_id": req.auctionID,
						"kind":       string(req.event.Kind),
						"dropped":    dropped,
					})
					utils.EventsDroppedTotal.Add(float64(dropped))
				}
			}
		}
	}()
}

// Publish enqueues an event for the auction's subscribers and returns
// immediately.
func (b *Broadcaster) Publish(auctionID string, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.active {
		return ErrClosed
	}

	select {
	case b.queue.In <- publishRequest{auctionID: auctionID, event: event}:
		utils.EventsPublishedTotal.WithLabelValues(string(event.Kind)).Inc()
		return nil
	case <-b.ctx.Done():
		return ErrClosed
	}
}

// Subscribe registers a new subscriber channel for an auction. The channel is
// closed on Unsubscribe or Close; there is no replay of past events, callers
// initialize from a fresh snapshot read before subscribing.
func (b *Broadcaster) Subscribe(auctionID string) (<-chan Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return nil, ErrClosed
	}

	ch, ok := b.channels[auctionID]
	if !ok {
		ch = newChannel(b.bufferSize)
		b.channels[auctionID] = ch
	}
	return ch.subscribe(), nil
}

// Unsubscribe removes a subscriber and closes its channel. The auction's
// subscriber set is released once empty.
func (b *Broadcaster) Unsubscribe(auctionID string, sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.channels[auctionID]
	if !ok {
		return
	}
	ch.unsubscribe(sub)
	if ch.isIdle() {
		delete(b.channels, auctionID)
	}
}

// Close stops the dispatcher and closes every subscriber channel. Safe to
// call more than once, and on a broadcaster that was never started.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	b.active = false
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.channels {
		ch.unsubscribeAll()
	}
	clear(b.channels)
}
