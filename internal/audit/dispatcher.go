package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultQueueSize bounds the asynchronous write queue
	DefaultQueueSize = 1024
	// DefaultWorkers is the number of goroutines draining the queue
	DefaultWorkers = 2

	writeTimeout = 5 * time.Second
)

// Dispatcher decouples audit writes from the request-handling call stack.
// Events are queued on a bounded channel and written by a small worker
// pool. Enqueue never blocks: on saturation the event is dropped, counted,
// and logged. A lost event is an accepted risk; a blocked request is not.
type Dispatcher struct {
	store   Writer
	events  chan *Event
	workers int

	wg       sync.WaitGroup
	stopOnce sync.Once

	// mu guards stopped so no Enqueue send can race the channel close.
	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a dispatcher with the given queue size and worker count
func NewDispatcher(store Writer, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Dispatcher{
		store:   store,
		events:  make(chan *Event, queueSize),
		workers: workers,
	}
}

// Start launches the worker pool
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	slog.Info("Audit dispatcher started", "workers", d.workers, "queue_size", cap(d.events))
}

// Stop closes the queue, drains remaining events, and waits for the workers
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.events)
		d.mu.Unlock()
	})
	d.wg.Wait()
	slog.Info("Audit dispatcher stopped")
}

// Enqueue queues an event for writing. Returns false when the event was
// dropped because the queue is full or the dispatcher has stopped.
func (d *Dispatcher) Enqueue(e *Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return false
	}
	select {
	case d.events <- e:
		return true
	default:
		queueDrops.Inc()
		slog.Warn("audit queue saturated, event dropped",
			"action", e.Action,
			"target_type", e.TargetType,
			"target_id", e.TargetID,
		)
		return false
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for e := range d.events {
		d.write(e)
	}
}

// write persists one event. A fresh background context is used on purpose:
// the triggering request may already be cancelled, and auditing tracks
// committed state changes, not client-observed completion.
func (d *Dispatcher) write(e *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := d.store.Insert(ctx, e); err != nil {
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
