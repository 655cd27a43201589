package matchmaking

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    eligibilityChecksTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "matchmaking_eligibility_checks_total",
            Help: "Total number of eligibility checks by result",
        },
        []string{"result"},
    )

    allocationsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "matchmaking_allocations_total",
            Help: "Total number of match allocation attempts by outcome",
        },
        []string{"outcome"},
    )

    rareMatchesTotal = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "matchmaking_rare_matches_total",
            Help: "Total number of same-category matches created",
        },
    )
)

func RecordEligibilityCheck(result string) {
    eligibilityChecksTotal.WithLabelValues(result).Inc()
}

func RecordAllocation(outcome string) {
    allocationsTotal.WithLabelValues(outcome).Inc()
}

func RecordRareMatch() {
    rareMatchesTotal.Inc()
}
