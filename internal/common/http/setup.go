package http

import (
	"net/http"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/constants"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
)

// BuildBaseHandler wraps the router with the middleware every request passes
// through, outermost first: security headers, CSP, trace id, panic recovery,
// body size limit, request metrics.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	collector := httpmetrics.New("/metrics", "/health")
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	csp := ContentSecurityPolicyMiddleware("")

	return SecurityHeadersMiddleware(csp(TraceIDMiddleware(recovery(maxRequestSize(collector.Wrap(handler))))))
}
