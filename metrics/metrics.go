package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SnapshotsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pairchat_snapshots_delivered_total",
			Help: "Total snapshots delivered to subscribers",
		},
	)

	SnapshotFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pairchat_snapshot_failures_total",
			Help: "Total snapshots that could not be built",
		},
	)

	ActiveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairchat_active_subscriptions",
			Help: "Number of open message subscriptions",
		},
	)

	MessagesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pairchat_messages_written_total",
			Help: "Total messages written",
		},
	)

	WriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairchat_write_failures_total",
			Help: "Total failed write steps",
		},
		[]string{"step"}, // "db", "cache" or "publish"
	)
)
