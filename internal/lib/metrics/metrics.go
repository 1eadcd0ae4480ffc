package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_reservation_operations_total",
			Help: "Reserve and cancel calls by outcome",
		},
		[]string{"operation", "outcome"},
	)

	guardWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticket_reservation_guard_wait_seconds",
			Help:    "Time spent waiting for the per-event serialization guard",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"operation"},
	)

	inventoryDrift = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticket_inventory_drifted_events",
			Help: "Events whose sold units disagree with their reservation count at the last audit",
		},
	)
)

func TrackOperation(operation, outcome string) {
	reservationOperations.WithLabelValues(operation, outcome).Inc()
}

func TrackGuardWait(operation string, d time.Duration) {
	guardWait.WithLabelValues(operation).Observe(d.Seconds())
}

func SetInventoryDrift(events int) {
	inventoryDrift.Set(float64(events))
}
