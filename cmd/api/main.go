package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/bootstrap"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/constants"
	srv "github.com/AlibekovAA/task-tracker/backend/internal/common/server"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	app, err := bootstrap.Load(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	serverConfig := srv.DefaultServerConfig(app.Config.HTTPPort)
	server := srv.NewServer(serverConfig, app.Handler)

	srv.StartWithGracefulShutdownAndHooks(server, app.Log, "tasktracker", app.ShutdownHooks())
}
