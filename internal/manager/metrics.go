package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	trackerUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trackd",
			Name:      "tracker_updates_total",
			Help:      "Total tracker updates by tracker kind",
		},
		[]string{"kind"},
	)

	detectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trackd",
			Name:      "detections_total",
			Help:      "Detections seen by reconciliation, by outcome (kept, dropped)",
		},
		[]string{"outcome"},
	)

	reconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "trackd",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of batch reconciliation in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	trackerInstances = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trackd",
			Name:      "tracker_instances",
			Help:      "Live tracker instances across all runs",
		},
	)
)

func init() {
	prometheus.MustRegister(trackerUpdatesTotal, detectionsTotal, reconcileDuration, trackerInstances)
}
