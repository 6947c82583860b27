package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecisionsTotal counts staff decisions by action and outcome code.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bagportal_decisions_total",
		Help: "Total number of staff decisions by action and result",
	}, []string{"action", "result"})

	// SectorDocumentWrites counts sector document persist attempts by operation and result.
	SectorDocumentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bagportal_sector_document_writes_total",
		Help: "Sector document writes by operation and result (atomic, fallback, failed)",
	}, []string{"operation", "result"})

	// SectorDocumentWriteFailures counts sector document writes that were lost.
	SectorDocumentWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bagportal_sector_document_write_failures_total",
		Help: "Total number of sector document writes that failed on both the atomic and fallback path",
	})

	// SectorDocumentCorruptions counts unreadable sector documents that were replaced.
	SectorDocumentCorruptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bagportal_sector_document_corruptions_total",
		Help: "Total number of unreadable sector documents treated as empty",
	})

	// ExportFailures counts decision side effects that failed after the status was persisted.
	ExportFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bagportal_export_failures_total",
		Help: "Total number of failed sector exports by stage",
	}, []string{"stage"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bagportal_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// FreeBagsGranted counts free bags handed out in approved requests.
	FreeBagsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bagportal_free_bags_granted_total",
		Help: "Total number of free bags exported with approved requests",
	})

	// WebSocketBackpressureDrops counts outbound websocket messages dropped per hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bagportal_websocket_backpressure_drops_total",
		Help: "Total number of websocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// WebSocketConnections tracks open websocket connections per hub.
	WebSocketConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bagportal_websocket_connections",
		Help: "Number of open websocket connections",
	}, []string{"hub"})
)
