package notifications

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    eventsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "notifications_system_events_total",
            Help: "Total number of system events recorded by category",
        },
        []string{"category"},
    )

    feedSize = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "notifications_feed_size",
            Help:    "Distribution of computed feed sizes",
            Buckets: prometheus.LinearBuckets(0, 5, 11),
        },
    )
)

func RecordEvent(category EventCategory) {
    eventsTotal.WithLabelValues(string(category)).Inc()
}

func RecordProjection(size int) {
    feedSize.Observe(float64(size))
}
