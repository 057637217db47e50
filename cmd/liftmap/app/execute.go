package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/liftmap/cmd/liftmap/cmd/pipeline"
	"github.com/agentstation/liftmap/cmd/liftmap/cmd/status"
	"github.com/agentstation/liftmap/internal/cmd/output"
	"github.com/agentstation/liftmap/internal/config"
)

// Execute runs the liftmap CLI with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "liftmap",
		Short:   "Exercise catalog import and reconciliation",
		Version: a.build.Version,
		Long: `Liftmap keeps a local exercise library in step with a public exercise
catalog. It fetches the catalog (with retries and fallbacks down to a copy
bundled with the binary), normalizes and validates every record, merges it
into the local store without touching user-created exercises, and links
exercises into progressions and regressions.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.flags.ConfigFile, "config", "", "config file (default is $HOME/.liftmap.yaml)")
	flags.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.flags.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.StringVarP(&a.flags.Format, "format", "o", "", "output format: table, json, yaml")
	flags.StringVar(&a.flags.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringVar(&a.flags.DBPath, "db", "", "catalog database path (default is ~/.liftmap/liftmap.db)")

	rootCmd.SetVersionTemplate("liftmap {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := mustGetString(cmd, "config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.config = cfg
	}

	a.flags.Verbose = mustGetBool(cmd, "verbose")
	a.flags.Quiet = mustGetBool(cmd, "quiet")
	a.config.UpdateFromFlags(mustGetString(cmd, "db"), mustGetString(cmd, "log-level"))

	if _, err := output.ParseFormat(mustGetString(cmd, "format")); err != nil {
		return err
	}
	if err := a.config.Validate(); err != nil {
		return err
	}

	// Reinitialize logger with updated config
	logger := NewLogger(a.config, a.flags)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(pipeline.NewImportCommand(a))
	rootCmd.AddCommand(pipeline.NewSeedCommand(a))
	rootCmd.AddCommand(pipeline.NewRepairCommand(a))
	rootCmd.AddCommand(pipeline.NewLinksCommand(a))

	// Management commands
	rootCmd.AddCommand(status.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
