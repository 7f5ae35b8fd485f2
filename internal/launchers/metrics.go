package launchers

import (
	"galaxy-datagen/internal/shared/metrics"
)

var (
	metricGeneratorLaunchedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubGenerator,
			Name:      "launched_total",
		},
		[]string{metrics.FieldErrorCode},
	)

	metricGeneratorExitedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubGenerator,
			Name:      "exited_total",
		},
		[]string{"exit_code"},
	)
)
