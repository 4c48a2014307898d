package notifier

import "sync"

// channel holds the subscriber set for a single auction and fans events out
// to each subscriber without blocking on any of them.
type channel struct {
	mu          sync.RWMutex
	subscribers map[<-chan Event]chan Event
	bufferSize  int
}

func newChannel(bufferSize int) *channel {
	return &channel{
		subscribers: make(map[<-chan Event]chan Event),
		bufferSize:  bufferSize,
	}
}

// subscribe adds a new buffered subscriber channel and returns its read side.
func (c *channel) subscribe() <-chan Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan Event, c.bufferSize)
	c.subscribers[ch] = ch
	return ch
}

// unsubscribe removes and closes the given subscriber channel.
func (c *channel) unsubscribe(sub <-chan Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if writeCh, exists := c.subscribers[sub]; exists {
		delete(c.subscribers, sub)
		close(writeCh)
	}
}

// unsubscribeAll closes every subscriber channel and clears the set.
func (c *channel) unsubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, writeCh := range c.subscribers {
		close(writeCh)
	}
	clear(c.subscribers)
}

// broadcast delivers the event to every subscriber whose buffer has room and
// returns the number of subscribers that had to be skipped.
func (c *channel) broadcast(event Event) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dropped := 0
	for _, writeCh := range c.subscribers {
		select {
		case writeCh <- event:
		default:
			dropped++
		}
	}
	return dropped
}

// isIdle reports whether the subscriber set is empty.
func (c *channel) isIdle() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscribers) == 0
}
