// Package bus provides the async change bus that pushes record mutations to
// subscribed dashboard views.
package bus

import (
	"sync"
	"time"
)

// Mutation operation constants.
const (
	OpInsert = "insert"
	OpPatch  = "patch"
	OpDelete = "delete"
)

// Change describes a single record mutation.
type Change struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Op         string    `json:"op"`
	Timestamp  time.Time `json:"timestamp"`
}

// ChangeBus fans out record mutations to subscribers. Slow subscribers drop
// changes rather than blocking writers; views reload on the next change they
// do receive, so a dropped change only delays a refresh.
type ChangeBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Change
}

// NewChangeBus creates an empty change bus.
func NewChangeBus() *ChangeBus {
	return &ChangeBus{subs: make(map[int]chan Change)}
}

// Publish delivers a change to every subscriber. Never blocks.
func (b *ChangeBus) Publish(c Change) {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe func. The channel is buffered; it is closed on unsubscribe.
func (b *ChangeBus) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 64)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Subscribers returns the current subscriber count.
func (b *ChangeBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
