package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderengine_operations_total",
			Help: "Total engine operations by name and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: ok, error
	)

	ReleasedFunds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tenderengine_released_funds_total",
			Help: "Total funds released to contractors, in minor units",
		},
	)

	ActiveTenders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tenderengine_tenders_in_progress",
			Help: "Tenders currently in progress",
		},
	)
)

// RecordOperation counts one engine operation outcome.
func RecordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	OperationCount.WithLabelValues(operation, outcome).Inc()
}
