package auditlogs

import (
	"galaxy-datagen/internal/shared/metrics"
)

var (
	metricAuditAppendedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAudit,
			Name:      "appended_total",
		},
		[]string{metrics.FieldErrorCode},
	)
)
