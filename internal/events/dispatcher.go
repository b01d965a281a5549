package events

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher, used in tests.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a synchronous dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish synchronously invokes handlers for the given event.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// QueueDispatcher delivers events off the request path through a buffered
// channel and a single worker goroutine. Delivery is best-effort: each
// handler gets a bounded number of attempts with exponential backoff, then
// the failure is logged and dropped. Publish never propagates handler errors.
type QueueDispatcher struct {
	mu          sync.RWMutex
	listeners   map[EventType][]EventHandler
	queue       chan Event
	logger      *zap.Logger
	maxAttempts int
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewQueueDispatcher creates an asynchronous dispatcher with the given
// buffer size.
func NewQueueDispatcher(logger *zap.Logger, buffer int) *QueueDispatcher {
	if buffer <= 0 {
		buffer = 128
	}
	return &QueueDispatcher{
		listeners:   make(map[EventType][]EventHandler),
		queue:       make(chan Event, buffer),
		logger:      logger,
		maxAttempts: 3,
	}
}

// Start launches the delivery worker. It drains the queue until Close is
// called or ctx is cancelled.
func (d *QueueDispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case event, ok := <-d.queue:
				if !ok {
					return
				}
				d.deliver(ctx, event)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Publish enqueues the event. A full queue drops the event with a log line
// rather than blocking the request path.
func (d *QueueDispatcher) Publish(_ context.Context, event Event) error {
	select {
	case d.queue <- event:
	default:
		d.logger.Warn("event queue full; dropping event",
			zap.String("type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *QueueDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Close stops accepting events and waits for the worker to drain.
func (d *QueueDispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *QueueDispatcher) deliver(ctx context.Context, event Event) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		var err error
		for attempt := 0; attempt < d.maxAttempts; attempt++ {
			if attempt > 0 {
				select {
				case <-time.After(backoff(attempt)):
				case <-ctx.Done():
					return
				}
			}
			if err = handler(ctx, event); err == nil {
				break
			}
		}
		if err != nil {
			d.logger.Error("event handler failed; giving up",
				zap.String("type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.Error(err))
		}
	}
}

// backoff returns the delay before the given retry attempt, capped at 30s.
func backoff(attempt int) time.Duration {
	base := 100 * time.Millisecond
	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	return delay
}
