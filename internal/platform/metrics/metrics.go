package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts processed HTTP requests by method, endpoint and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	// HTTPRequestDuration tracks the latency distribution of HTTP requests.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallet_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "endpoint"})

	// SagaOutcomesTotal counts shipment saga terminations by outcome:
	// created, insufficient_funds, refunded, compensation_queued.
	SagaOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_shipment_saga_outcomes_total",
		Help: "Shipment creation saga terminal outcomes",
	}, []string{"outcome"})

	// TransfersTotal counts reseller credit transfers by result.
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_transfers_total",
		Help: "Reseller credit transfers, labeled by result",
	}, []string{"result"})

	// CompensationRetriesTotal counts compensation task retry attempts.
	CompensationRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_compensation_retries_total",
		Help: "Compensation task retry attempts",
	})

	// CompensationPermanentFailuresTotal counts tasks that exhausted their retry budget.
	CompensationPermanentFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_compensation_permanent_failures_total",
		Help: "Compensation tasks marked FAILED_PERMANENT",
	})
)
