package server

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
)

func TestRun_ShutdownRunsHooks(t *testing.T) {
	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "ERROR")
	srv := NewServer(DefaultServerConfig("0"), http.NotFoundHandler())
	srv.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	hookCalled := make(chan struct{}, 1)
	hooks := []ShutdownHook{
		func(context.Context) error {
			hookCalled <- struct{}{}
			return nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, log, "test", hooks) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	select {
	case <-hookCalled:
	default:
		t.Fatal("shutdown hook was not called")
	}
}

func TestRun_ListenError(t *testing.T) {
	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "ERROR")
	srv := NewServer(DefaultServerConfig("0"), http.NotFoundHandler())
	srv.Addr = "invalid-address"

	err := Run(context.Background(), srv, log, "test", nil)
	if err == nil {
		t.Fatal("expected listen error")
	}
}
