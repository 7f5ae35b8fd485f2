package dispatchers

import (
	"galaxy-datagen/internal/shared/metrics"
)

const (
	outcomeDispatched = "dispatched"
	outcomeRejected   = "rejected"
	outcomeFailed     = "failed"
)

var (
	metricDispatchTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubDispatch,
			Name:      "requests_total",
		},
		[]string{"outcome", metrics.FieldErrorCode},
	)

	metricDispatchedParticles = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubDispatch,
			Name:      "particles",
			Buckets:   []float64{100, 1000, 10000, 50000, 100000, 150000, 200000},
		},
		[]string{},
	)
)
