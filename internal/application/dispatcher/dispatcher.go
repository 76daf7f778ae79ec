package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/event"
)

// ErrClosed is returned when dispatching after Close
var ErrClosed = errors.New("dispatcher is closed")

// Dispatcher routes domain events to subscribed handlers
type Dispatcher interface {
	// Subscribe registers a named handler for one or more event types
	Subscribe(name string, handler Handler, types ...event.Type)

	// Unsubscribe removes the named handler from an event type
	Unsubscribe(eventType event.Type, name string)

	// Dispatch runs every handler for the event in registration order and
	// returns the first error
	Dispatch(ctx context.Context, evt *event.Event) error

	// DispatchAsync runs each handler on its own goroutine and returns at once.
	// Handler errors are logged, never returned.
	DispatchAsync(ctx context.Context, evt *event.Event)

	// Handlers returns the names subscribed to an event type
	Handlers(eventType event.Type) []string

	// Close stops accepting events and waits for running async handlers
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type eventDispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]subscription
	logger   Logger
	timeout  time.Duration

	wg     sync.WaitGroup
	closed atomic.Bool
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *eventDispatcher) {
		d.logger = logger
	}
}

// WithAsyncTimeout bounds how long a single async handler may run.
// Non-positive values keep the default.
func WithAsyncTimeout(timeout time.Duration) Option {
	return func(d *eventDispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{
		handlers: make(map[event.Type][]subscription),
		timeout:  30 * time.Second,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *eventDispatcher) Subscribe(name string, handler Handler, types ...event.Type) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, t := range types {
		d.handlers[t] = append(d.handlers[t], subscription{name: name, handler: handler})
		d.info("Handler registered", "event_type", t, "handler_name", name)
	}
}

func (d *eventDispatcher) Unsubscribe(eventType event.Type, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subs := d.handlers[eventType]
	filtered := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.name != name {
			filtered = append(filtered, s)
		}
	}
	d.handlers[eventType] = filtered

	d.info("Handler unregistered", "event_type", eventType, "handler_name", name)
}

func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	if d.closed.Load() {
		return ErrClosed
	}

	subs := d.snapshot(evt.Type)
	d.info("Dispatching event",
		"event_type", evt.Type,
		"event_id", evt.ID,
		"application_id", evt.ApplicationID,
		"handler_count", len(subs),
	)

	for _, s := range subs {
		if err := d.safeExecute(ctx, evt, s); err != nil {
			d.error("Handler error",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"handler_name", s.name,
				"error", err,
			)
			return fmt.Errorf("handler %s failed: %w", s.name, err)
		}
	}

	return nil
}

func (d *eventDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	if d.closed.Load() {
		d.error("Cannot dispatch async event, dispatcher is closed",
			"event_type", evt.Type,
			"event_id", evt.ID,
		)
		return
	}

	subs := d.snapshot(evt.Type)
	d.info("Dispatching event asynchronously",
		"event_type", evt.Type,
		"event_id", evt.ID,
		"application_id", evt.ApplicationID,
		"handler_count", len(subs),
	)

	// The caller's context usually belongs to a request that ends as soon as
	// this returns, so handlers keep its values but not its cancellation.
	base := context.WithoutCancel(ctx)

	for _, s := range subs {
		d.wg.Add(1)
		go func(s subscription) {
			defer d.wg.Done()

			hctx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()

			if err := d.safeExecute(hctx, evt, s); err != nil {
				d.error("Async handler error",
					"event_type", evt.Type,
					"event_id", evt.ID,
					"handler_name", s.name,
					"error", err,
				)
			}
		}(s)
	}
}

func (d *eventDispatcher) Handlers(eventType event.Type) []string {
	subs := d.snapshot(eventType)
	names := make([]string, len(subs))
	for i, s := range subs {
		names[i] = s.name
	}
	return names
}

func (d *eventDispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("close: %w", ErrClosed)
	}

	d.info("Closing dispatcher, waiting for async handlers")
	d.wg.Wait()
	d.info("Dispatcher closed")

	return nil
}

func (d *eventDispatcher) snapshot(eventType event.Type) []subscription {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]subscription(nil), d.handlers[eventType]...)
}

// safeExecute runs a handler with panic recovery
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, s subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			d.error("Handler panic recovered",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"handler_name", s.name,
				"panic", r,
			)
		}
	}()

	return s.handler(ctx, evt)
}

func (d *eventDispatcher) info(msg string, kv ...interface{}) {
	if d.logger != nil {
		d.logger.Info(msg, kv...)
	}
}

func (d *eventDispatcher) error(msg string, kv ...interface{}) {
	if d.logger != nil {
		d.logger.Error(msg, kv...)
	}
}
