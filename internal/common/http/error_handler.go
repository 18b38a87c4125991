package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	"github.com/AlibekovAA/task-tracker/backend/internal/observability/metrics"
)

const retryAfterSeconds = "1"

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		h.handleDomainError(w, r, domainErr, err)
		return
	}

	logFields := logger.Fields{
		"error":  err.Error(),
		"action": "unhandled_error",
		"path":   r.URL.Path,
		"method": r.Method,
	}

	h.log.WithFields(ctx, logFields).Errorf("unhandled error: %v", err)

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, http.StatusInternalServerError, CodeInternal, "internal server error", nil, traceID)
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, domainErr commonerrors.DomainError, original error) {
	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)

	// Expired and invalid tokens are indistinguishable to clients.
	if errors.Is(domainErr, commonerrors.ErrInvalidToken) || errors.Is(domainErr, commonerrors.ErrTokenExpired) {
		domainErr = commonerrors.ErrUnauthenticated.WithCause(domainErr)
	}

	if traceID != "" && domainErr.TraceID() == "" {
		domainErr = domainErr.WithTraceID(traceID)
	}

	status := domainErr.HTTPStatus()

	logFields := logger.Fields{
		"error_code": domainErr.Code(),
		"category":   string(domainErr.Category()),
		"status":     status,
		"action":     "domain_error",
	}

	switch {
	case status >= http.StatusInternalServerError:
		h.log.WithFields(ctx, logFields).Errorf("domain error: %v", original)
	case h.log.ShouldLog(logger.DEBUG):
		h.log.WithFields(ctx, logFields).Debugf("domain error: %s", domainErr.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(domainErr.Category()),
		domainErr.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	message := domainErr.Message()
	code := domainErr.Code()
	details := domainErr.Details()
	if domainErr.Category() == commonerrors.CategoryInternal {
		message = "internal server error"
		code = CodeInternal
		details = nil
	}

	WriteErrorEnvelope(w, status, code, message, details, domainErr.TraceID())
}

func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	handler := NewErrorHandler(log)
	handler.HandleError(w, r, err)
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, ok := ctx.Value(constants.TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
