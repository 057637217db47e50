package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/liftmap"
	"github.com/agentstation/liftmap/cmd/application"
)

// ImportFlags holds flags for the import command.
type ImportFlags struct {
	DryRun        bool
	OnlyIfChanged bool
}

// NewImportCommand creates the import command.
func NewImportCommand(app application.Application) *cobra.Command {
	flags := &ImportFlags{}

	cmd := &cobra.Command{
		Use:     "import",
		GroupID: "core",
		Short:   "Import the exercise catalog",
		Args:    cobra.NoArgs,
		Long: `Import fetches the exercise catalog and merges it into the local store.

The catalog is fetched from the primary URL, then the fallback mirror, then
the copy bundled with the binary. Every record is normalized and validated;
one invalid record fails the whole import and nothing is written. Valid
records are merged in batches inside one transaction: catalog records are
inserted or updated, user-created exercises are never touched. Exercise
links are recomputed afterwards.`,
		Example: `  liftmap import                     # Import and merge the catalog
  liftmap import --dry-run           # Report what would change
  liftmap import --only-if-changed   # Skip when the payload hash is unchanged
  liftmap import -o json             # Machine-readable result`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client(app)
			if err != nil {
				return err
			}

			res, err := c.ImportExercises(cmd.Context(),
				liftmap.WithDryRun(flags.DryRun),
				liftmap.WithOnlyIfChanged(flags.OnlyIfChanged),
				liftmap.WithProgress(progressLogger(app)),
			)
			if err != nil {
				return err
			}
			return render(cmd, app, res)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "report changes without writing")
	cmd.Flags().BoolVar(&flags.OnlyIfChanged, "only-if-changed", false, "skip the import when the payload is unchanged since the last success")

	return cmd
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "seed",
		GroupID: "core",
		Short:   "Bootstrap the catalog if needed",
		Args:    cobra.NoArgs,
		Long: `Seed installs the bundled starter catalog into an empty store, then runs
a full import unless the stored catalog is already current.

The catalog is current when the last import succeeded for this catalog
version and the store holds at least the minimum number of exercises.
When the import fails the starter catalog stays in place.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client(app)
			if err != nil {
				return err
			}

			res, err := c.SeedExercisesIfNeeded(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, app, res)
		},
	}
}
