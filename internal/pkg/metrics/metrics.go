package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RPCRequestsTotal counts outbound chain RPC requests by method and outcome.
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treasury_rpc_requests_total",
			Help: "Outbound chain RPC requests.",
		},
		[]string{"method", "outcome"},
	)

	// IndexerRequestsTotal counts outbound proposal indexer requests by outcome.
	IndexerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treasury_indexer_requests_total",
			Help: "Outbound proposal indexer requests.",
		},
		[]string{"outcome"},
	)

	// SnapshotRefreshDuration observes full treasury snapshot refresh latency.
	SnapshotRefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "treasury_snapshot_refresh_seconds",
			Help:    "Duration of full treasury snapshot refreshes.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SnapshotDiscardedTotal counts refreshes discarded because a newer
	// generation superseded them before they completed.
	SnapshotDiscardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "treasury_snapshot_discarded_total",
			Help: "Snapshot refreshes discarded as stale.",
		},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once at startup.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		RPCRequestsTotal,
		IndexerRequestsTotal,
		SnapshotRefreshDuration,
		SnapshotDiscardedTotal,
	)
}
