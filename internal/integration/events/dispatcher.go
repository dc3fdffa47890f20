// Package events fans committed domain events out to the audit log, the email queue
// and Redis subscribers without blocking the operation that produced them.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
)

const defaultHandlerTimeout = 10 * time.Second

// Handler consumes dispatched events.
type Handler interface {
	Name() string
	Handle(ctx context.Context, event entity.Event) error
}

// Observer is notified of dispatch outcomes. Implementations must be cheap.
type Observer interface {
	ObserveEmitted(eventType entity.EventType)
	ObserveDropped()
	ObserveHandlerFailure(handler string)
}

// Dispatcher is a buffered, single consumer event sink. Emit never blocks: when the
// buffer is full the event is dropped and counted.
type Dispatcher struct {
	mu       sync.RWMutex
	events   chan entity.Event
	handlers []Handler
	observer Observer
	timeout  time.Duration
	closed   bool
	started  bool
	done     chan struct{}
}

// NewDispatcher creates a dispatcher with room for bufferSize pending events.
// observer may be nil.
func NewDispatcher(bufferSize int, observer Observer, handlers ...Handler) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Dispatcher{
		events:   make(chan entity.Event, bufferSize),
		handlers: handlers,
		observer: observer,
		timeout:  defaultHandlerTimeout,
		done:     make(chan struct{}),
	}
}

// Start launches the consumer goroutine. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	go d.run()
	slog.Info("Event dispatcher started",
		"buffer_size", cap(d.events),
		"handlers", len(d.handlers),
	)
}

// Emit enqueues event for delivery.
func (d *Dispatcher) Emit(_ context.Context, event entity.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}

	select {
	case d.events <- event:
		if d.observer != nil {
			d.observer.ObserveEmitted(event.Type)
		}
	default:
		d.drop(event, "buffer full")
	}
}

// Close stops accepting events and waits until the buffered ones are handled or ctx
// ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.events)
	started := d.started
	d.mu.Unlock()

	if !started {
		// Nobody consumes the buffer, deliver it inline
		d.run()
		return nil
	}

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event dispatcher did not drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.events {
		d.deliver(event)
	}
	slog.Info("Event dispatcher stopped")
}

func (d *Dispatcher) deliver(event entity.Event) {
	for _, h := range d.handlers {
		if err := d.handle(h, event); err != nil {
			slog.Error("Event handler failed",
				"handler", h.Name(),
				"event_type", event.Type,
				"event_id", event.ID,
				"group_id", event.GroupID,
				"error", err,
			)
			if d.observer != nil {
				d.observer.ObserveHandlerFailure(h.Name())
			}
		}
	}
}

func (d *Dispatcher) handle(h Handler, event entity.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return h.Handle(ctx, event)
}

func (d *Dispatcher) drop(event entity.Event, reason string) {
	slog.Warn("Event dropped",
		"reason", reason,
		"event_type", event.Type,
		"event_id", event.ID,
	)
	if d.observer != nil {
		d.observer.ObserveDropped()
	}
}

// Ensure Dispatcher implements adapter.EventSink.
var _ adapter.EventSink = (*Dispatcher)(nil)
