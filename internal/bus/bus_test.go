package bus

import (
	"testing"
	"time"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := NewChangeBus()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(Change{Collection: "tasks", ID: "t1", Op: OpInsert})

	select {
	case c := <-ch:
		if c.Collection != "tasks" || c.ID != "t1" || c.Op != OpInsert {
			t.Fatalf("unexpected change: %+v", c)
		}
		if c.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be filled")
		}
	case <-time.After(time.Second):
		t.Fatal("change not delivered")
	}
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	b := NewChangeBus()
	_, cancel := b.Subscribe()
	defer cancel()

	// Over-fill the buffer; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			b.Publish(Change{Collection: "activities", ID: "a", Op: OpInsert})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewChangeBus()
	ch, cancel := b.Subscribe()
	if b.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.Subscribers())
	}
	cancel()
	if b.Subscribers() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", b.Subscribers())
	}
	if _, open := <-ch; open {
		t.Fatal("expected closed channel after unsubscribe")
	}
	// Second cancel is a no-op.
	cancel()
}
