package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TaskOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_operations_total",
			Help: "Total number of task operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	TaskNotFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_not_found_total",
			Help: "Total number of task lookups answered with not found (missing or foreign task)",
		},
		[]string{"operation"},
	)
)
