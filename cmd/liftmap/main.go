// Package main provides the entry point for the liftmap CLI tool.
package main

import (
	"context"
	"os"
	"time"

	"github.com/agentstation/liftmap/cmd/application"
	"github.com/agentstation/liftmap/cmd/liftmap/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cli, err := app.New(application.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
		BuiltBy: builtBy,
	})
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	runErr := cli.Execute(ctx, os.Args[1:])

	// Fresh context: the signal context may already be cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := cli.Shutdown(shutdownCtx); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			cli.Logger().Error().Err(err).Msg("Shutdown error during error handling")
		}
	}
	app.ExitOnError(runErr)
}
