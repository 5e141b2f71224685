package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stationdesk_audit_events_written_total",
		Help: "Number of audit events durably written to the event store",
	})

	writeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stationdesk_audit_write_failures_total",
		Help: "Number of audit event writes rejected or failed by the event store",
	})

	queueDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stationdesk_audit_queue_drops_total",
		Help: "Number of audit events dropped because the write queue was saturated",
	})
)
