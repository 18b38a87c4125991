package jwtverify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
)

type mockVerifier struct {
	verifyFunc func(token string) (string, error)
}

func (m *mockVerifier) VerifyToken(token string) (string, error) {
	return m.verifyFunc(token)
}

func newTestLogger() *logger.Logger {
	return logger.NewWithWriter(&bytes.Buffer{}, "test", "ERROR")
}

func TestMiddleware(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(token string) (string, error) {
			switch token {
			case "good":
				return "user-1", nil
			case "expired":
				return "", commonerrors.ErrTokenExpired
			default:
				return "", commonerrors.ErrInvalidToken
			}
		},
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUserID string
	}{
		{name: "bearer token", header: "Bearer good", wantStatus: http.StatusOK, wantUserID: "user-1"},
		{name: "lowercase scheme", header: "bearer good", wantStatus: http.StatusOK, wantUserID: "user-1"},
		{name: "bare token", header: "good", wantStatus: http.StatusOK, wantUserID: "user-1"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "other scheme", header: "Basic Z29vZA==", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer forged", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer expired", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var gotUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotUserID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Middleware(verifier, newTestLogger())(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			if tt.wantStatus != http.StatusOK {
				if called {
					t.Fatal("next handler must not run on auth failure")
				}
				var body struct {
					Code string `json:"code"`
				}
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if body.Code != "UNAUTHENTICATED" {
					t.Errorf("expected code UNAUTHENTICATED, got %q", body.Code)
				}
				return
			}

			if gotUserID != tt.wantUserID {
				t.Errorf("expected user id %q, got %q", tt.wantUserID, gotUserID)
			}
		})
	}
}

func TestUserIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserIDFromContext(req.Context()); ok {
		t.Fatal("expected no user id in a fresh context")
	}
}
