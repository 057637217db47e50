// Package logging provides structured logging for liftmap using zerolog.
//
// Pipeline code never holds a logger of its own. It pulls one from the
// context so run, stage and source fields added by the orchestrator show up
// on every line:
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithStage(ctx, "fetching")
//	logging.FromContext(ctx).Info().Int("records", n).Msg("Payload retrieved")
package logging

import (
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// fallback is the logger used when a context carries none.
var fallback atomic.Pointer[zerolog.Logger]

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" && os.Getenv("DEBUG") != "" {
		level = "debug"
	}
	SetDefault(NewLoggerFromConfig(&Config{
		Level:   level,
		Format:  os.Getenv("LOG_FORMAT"),
		Output:  os.Getenv("LOG_OUTPUT"),
		NoColor: os.Getenv("NO_COLOR") != "",
	}))
}

// Default returns the process-wide fallback logger.
func Default() *zerolog.Logger {
	return fallback.Load()
}

// SetDefault replaces the fallback logger, and zerolog's global one with it.
func SetDefault(logger zerolog.Logger) {
	fallback.Store(&logger)
	log.Logger = logger
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
