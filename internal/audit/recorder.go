package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Writer is the slice of the event store the write path needs
type Writer interface {
	Insert(ctx context.Context, e *Event) error
}

// Recorder is the single write path for audit events. Both entry points are
// best-effort: a persistence failure is logged and counted, never surfaced,
// so a business operation's outcome can not depend on audit availability.
type Recorder struct {
	store      Writer
	dispatcher *Dispatcher
}

// NewRecorder creates a recorder writing to store, with a bounded queue for
// the asynchronous path.
func NewRecorder(store Writer, queueSize, workers int) *Recorder {
	return &Recorder{
		store:      store,
		dispatcher: NewDispatcher(store, queueSize, workers),
	}
}

// Start launches the asynchronous write workers
func (r *Recorder) Start() {
	r.dispatcher.Start()
}

// Stop drains queued events and stops the workers
func (r *Recorder) Stop() {
	r.dispatcher.Stop()
}

// Record writes an event synchronously. Used by callers that already know
// every parameter and have no response payload to resolve, such as seeding
// and CLI administration. Persistence errors are suppressed.
func (r *Recorder) Record(ctx context.Context, actorID uuid.UUID, action Action, targetType TargetType, targetID, sourceAddress string) {
	e := newEvent(actorID, action, targetType, targetID, sourceAddress)
	if err := r.store.Insert(ctx, e); err != nil {
		writeFailures.Inc()
		slog.Error("audit event write failed",
			"action", e.Action,
			"target_type", e.TargetType,
			"target_id", e.TargetID,
			"error", err,
		)
		return
	}
	eventsWritten.Inc()
}

// Submit hands an event to the asynchronous path. It never blocks: when the
// queue is saturated the event is dropped and counted.
func (r *Recorder) Submit(actorID uuid.UUID, action Action, targetType TargetType, targetID, sourceAddress string) {
	r.dispatcher.Enqueue(newEvent(actorID, action, targetType, targetID, sourceAddress))
}

func newEvent(actorID uuid.UUID, action Action, targetType TargetType, targetID, sourceAddress string) *Event {
	if targetID == "" {
		targetID = UnknownTarget
	}
	return &Event{
		ActorID:       actorID,
		Action:        string(action),
		TargetType:    string(targetType),
		TargetID:      targetID,
		OccurredAt:    time.Now().UTC(),
		SourceAddress: sourceAddress,
	}
}
