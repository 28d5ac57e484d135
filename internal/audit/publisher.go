package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Publisher stamps pocket events and appends them to a Store. With a buffer
// configured, appends happen on a background worker and a full queue sheds
// events instead of stalling the request that emitted them.
type Publisher struct {
	store  Store
	logger *slog.Logger

	queue   chan queued
	mu      sync.RWMutex // guards stopped against sends on a closed queue
	stopped bool
	drained sync.WaitGroup
	dropped atomic.Int64
}

// queued keeps the emitter's context values (request ID, span) without its cancellation.
type queued struct {
	ctx   context.Context
	event Event
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer moves appends to a background worker with a queue of size events.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan queued, size)
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.drained.Add(1)
		go p.run()
	}
	return p
}

func (p *Publisher) run() {
	defer p.drained.Done()
	for q := range p.queue {
		p.append(q.ctx, q.event)
	}
}

func (p *Publisher) append(ctx context.Context, event Event) {
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to persist audit event",
			"error", err,
			"action", event.Action,
			"pocket_id", event.PocketID,
		)
	}
}

// Emit records an event. Synchronous publishers return the store error;
// buffered ones never fail the caller.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if p.queue == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.append(ctx, event)
		return nil
	}
	select {
	case p.queue <- queued{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		p.dropped.Add(1)
		p.logger.WarnContext(ctx, "audit queue full, event dropped",
			"action", event.Action,
			"pocket_id", event.PocketID,
		)
	}
	return nil
}

// Dropped returns how many events a full queue has shed.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close drains queued events. Later emits append inline. Safe to call twice.
func (p *Publisher) Close() {
	if p.queue == nil {
		return
	}
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()
	p.drained.Wait()
}
