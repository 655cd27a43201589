package conversation

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    transitionsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "conversation_transitions_total",
            Help: "Total number of conversation transition attempts by outcome",
        },
        []string{"transition", "outcome"},
    )
)

func RecordTransition(transition, outcome string) {
    transitionsTotal.WithLabelValues(transition, outcome).Inc()
}
