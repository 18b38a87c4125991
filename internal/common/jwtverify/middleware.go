package jwtverify

import (
	"context"
	"errors"
	"net/http"
	"strings"

	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
	commonhttp "github.com/AlibekovAA/task-tracker/backend/internal/common/http"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	"github.com/AlibekovAA/task-tracker/backend/internal/observability/metrics"
)

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

type contextKey string

const userIDKey contextKey = "user_id"

const bearerPrefix = "Bearer "

func Middleware(verifier TokenVerifier, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString := extractToken(r.Header.Get("Authorization"))
			if tokenString == "" {
				log.WithFields(ctx, logger.Fields{
					"path":   r.URL.Path,
					"action": "jwt_auth_missing",
				}).Warn("jwt auth failed: missing authorization")
				metrics.JWTValidationsFailed.WithLabelValues("missing").Inc()
				writeUnauthenticated(w, r)
				return
			}

			metrics.JWTValidationsTotal.Inc()
			userID, err := verifier.VerifyToken(tokenString)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, commonerrors.ErrTokenExpired) {
					reason = "expired"
				}
				log.WithFields(ctx, logger.Fields{
					"path":   r.URL.Path,
					"reason": reason,
					"action": "jwt_auth_failed",
				}).Warnf("jwt auth failed: %v", err)
				metrics.JWTValidationsFailed.WithLabelValues(reason).Inc()
				writeUnauthenticated(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(ctx, userID)))
		})
	}
}

func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if len(header) >= len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	// Bare tokens are accepted for older clients that omit the scheme.
	if strings.Contains(header, " ") {
		return ""
	}
	return header
}

func writeUnauthenticated(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	commonhttp.WriteErrorEnvelope(
		w,
		commonerrors.ErrUnauthenticated.HTTPStatus(),
		commonerrors.ErrUnauthenticated.Code(),
		commonerrors.ErrUnauthenticated.Message(),
		nil,
		commonhttp.TraceIDFromContext(r.Context()),
	)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
