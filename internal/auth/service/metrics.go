package service

import "github.com/AlibekovAA/task-tracker/backend/internal/observability/metrics"

func recordAttempt(action, result string) {
	metrics.AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}
