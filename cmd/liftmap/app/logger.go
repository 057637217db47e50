package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/liftmap/internal/config"
	"github.com/agentstation/liftmap/pkg/logging"
)

// NewLogger creates a configured logger from the configuration and global flags.
// Log level precedence (highest to lowest):
//  1. --log-level flag, LIFTMAP_LOG_LEVEL, LOG_LEVEL or log_level in the config file
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. Default (info)
func NewLogger(cfg *config.Config, flags Flags) zerolog.Logger {
	level := determineLogLevel(cfg.LogLevel, flags)

	return logging.NewLoggerFromConfig(&logging.Config{
		Level:      level,
		Format:     cfg.LogFormat,
		Output:     cfg.LogOutput,
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		AddCaller:  level == "debug" || level == "trace",
	})
}

// determineLogLevel applies the precedence rules above.
func determineLogLevel(explicit string, flags Flags) string {
	if explicit != "" {
		validated := validateLogLevel(explicit)
		if validated != explicit {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", explicit, validated)
		}
		return validated
	}

	if flags.Verbose && flags.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if flags.Verbose {
		return "debug"
	}
	if flags.Quiet {
		return "warn"
	}

	return "info"
}

// validateLogLevel returns level when it is known, info otherwise.
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
