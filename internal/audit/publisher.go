package audit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// StorePublisher delivers events to a Store, either synchronously or through
// a bounded buffer drained by a background goroutine. When the buffer is
// full, Emit drops the event rather than blocking a lookup.
type StorePublisher struct {
	store Store

	inbox  chan Event
	done   chan struct{}
	closed sync.Once
}

// PublisherOption configures a StorePublisher.
type PublisherOption func(*StorePublisher)

// WithAsyncBuffer switches the publisher to asynchronous delivery with the
// given buffer capacity.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *StorePublisher) {
		if size > 0 {
			p.inbox = make(chan Event, size)
		}
	}
}

// NewPublisher creates a publisher backed by store. Without options every
// Emit writes through synchronously.
func NewPublisher(store Store, opts ...PublisherOption) *StorePublisher {
	p := &StorePublisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records one event. Zero timestamps are stamped on entry so callers
// can leave the field unset.
func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("audit buffer full")
	}
}

// ListRecent exposes the underlying store for the admin surface.
func (p *StorePublisher) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close drains any buffered events and stops the background goroutine.
// It is safe to call more than once.
func (p *StorePublisher) Close() error {
	p.closed.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
	return nil
}

func (p *StorePublisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		// Best effort: a failed append is not retried.
		_ = p.store.Append(context.Background(), event)
	}
}

// Fanout delivers every event to all child publishers. Each child is
// attempted even after a failure; the first error wins.
type Fanout []Publisher

func (f Fanout) Emit(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range f {
		if err := p.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f Fanout) Close() error {
	var firstErr error
	for _, p := range f {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
