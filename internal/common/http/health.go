package http

import (
	"context"
	"net/http"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
)

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

func HealthHandler(log *logger.Logger, ping Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteErrorEnvelope(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil, "")
			return
		}

		if ping != nil {
			if err := ping(r.Context()); err != nil {
				log.WithFields(r.Context(), logger.Fields{"action": "health_check"}).Warnf("store ping failed: %v", err)
				w.Header().Set("Retry-After", retryAfterSeconds)
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}

		log.Debugf("health check request")
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
