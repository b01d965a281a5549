package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestInMemoryDispatcherDeliversSynchronously(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got Event
	d.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		got = event
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t-1"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got.TicketID != "t-1" {
		t.Errorf("handler saw ticket %q, want t-1", got.TicketID)
	}
}

func TestInMemoryDispatcherIgnoresOtherTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	called := false
	d.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		called = true
		return nil
	})

	_ = d.Publish(context.Background(), Event{Type: EventTicketCreated})
	if called {
		t.Error("handler for another event type should not run")
	}
}

func TestQueueDispatcherDeliversAsynchronously(t *testing.T) {
	d := NewQueueDispatcher(zap.NewNop(), 16)

	done := make(chan Event, 1)
	d.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		done <- event
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Close()

	if err := d.Publish(ctx, Event{Type: EventTicketCreated, TicketID: "t-9"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case event := <-done:
		if event.TicketID != "t-9" {
			t.Errorf("delivered ticket %q, want t-9", event.TicketID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestQueueDispatcherRetriesFailedHandler(t *testing.T) {
	d := NewQueueDispatcher(zap.NewNop(), 16)

	var attempts atomic.Int32
	done := make(chan struct{})
	d.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient failure")
		}
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Close()

	_ = d.Publish(ctx, Event{Type: EventTicketStatusChanged, TicketID: "t-2"})

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("handler was not retried to success")
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestQueueDispatcherPublishNeverBlocks(t *testing.T) {
	// Worker not started, so the buffer fills up.
	d := NewQueueDispatcher(zap.NewNop(), 1)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := d.Publish(ctx, Event{Type: EventTicketCreated}); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}
}
