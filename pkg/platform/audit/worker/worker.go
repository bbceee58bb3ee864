// Package worker buffers audit events and persists them off the request path.
package worker

import (
	"context"
	"log/slog"
	"time"

	audit "watchgate/pkg/platform/audit"
	"watchgate/pkg/requestcontext"
)

const (
	// DefaultBufferSize bounds the inbox when the caller passes zero.
	DefaultBufferSize = 1024

	// drainTimeout caps how long shutdown waits for buffered events to persist.
	drainTimeout = 5 * time.Second
)

// Worker consumes audit events from a bounded inbox and persists them.
//
// Recording never blocks a request: when the inbox is full the event is
// dropped and counted. Store and sink failures are logged and counted but do
// not stop the worker; a user operation must never fail because auditing did.
type Worker struct {
	store   audit.Store
	sink    audit.Sink
	inbox   chan audit.Event
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a worker writing to store, with an optional sink for fan-out
// (nil disables it).
func New(store audit.Store, sink audit.Sink, bufferSize int, logger *slog.Logger, m *Metrics) *Worker {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Worker{
		store:   store,
		sink:    sink,
		inbox:   make(chan audit.Event, bufferSize),
		logger:  logger,
		metrics: m,
	}
}

// Record normalizes the event, fills actor and request metadata from the
// context when unset, and enqueues it without blocking.
func (w *Worker) Record(ctx context.Context, event audit.Event) {
	event = enrich(ctx, event)
	select {
	case w.inbox <- event:
		w.metrics.ObserveRecorded(event.Type)
	default:
		w.metrics.ObserveDropped(event.Type)
		w.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"event_type", event.Type,
			"event_id", event.ID)
	}
}

// Run consumes the inbox until ctx is cancelled, then drains whatever is
// still buffered.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return w.drain()
		case event := <-w.inbox:
			w.persist(ctx, event)
		}
	}
}

// drain persists events still buffered at shutdown. It runs on a fresh
// timeout because the run context is already cancelled.
func (w *Worker) drain() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.persist(ctx, event)
		default:
			return nil
		}
	}
}

func (w *Worker) persist(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.metrics.ObserveStoreFailure(event.Type)
		w.logger.ErrorContext(ctx, "failed to append audit event",
			"error", err,
			"event_type", event.Type,
			"event_id", event.ID)
	}
	if w.sink == nil {
		return
	}
	if err := w.sink.Publish(ctx, event); err != nil {
		w.metrics.ObserveSinkFailure(event.Type)
		w.logger.WarnContext(ctx, "failed to publish audit event",
			"error", err,
			"event_type", event.Type,
			"event_id", event.ID)
	}
}

func enrich(ctx context.Context, event audit.Event) audit.Event {
	event = event.Normalize(requestcontext.Now(ctx).UTC())
	if event.ActorID.IsNil() {
		event.ActorID = requestcontext.UserID(ctx)
	}
	if event.SessionID.IsNil() {
		event.SessionID = requestcontext.SessionID(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.ClientAgent == "" {
		if agent := requestcontext.Agent(ctx); agent.Browser != "" || agent.OS != "" {
			event.ClientAgent = agent.Browser + "/" + agent.OS
		}
	}
	return event
}
