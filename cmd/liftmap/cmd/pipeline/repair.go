package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/liftmap"
	"github.com/agentstation/liftmap/cmd/application"
)

// RepairFlags holds flags for the repair command.
type RepairFlags struct {
	DryRun bool
	Force  bool
}

// NewRepairCommand creates the repair command.
func NewRepairCommand(app application.Application) *cobra.Command {
	flags := &RepairFlags{}

	cmd := &cobra.Command{
		Use:     "repair",
		GroupID: "management",
		Short:   "Backfill stored catalog exercises",
		Args:    cobra.NoArgs,
		Long: `Repair refreshes catalog exercises that are already stored from the
current catalog payload. It never inserts new exercises and never touches
user-created ones. Placeholder text such as "TBD" left on catalog records
that are no longer in the payload is cleared.

A repair is skipped when the payload matches the last repaired one unless
--force is given.`,
		Example: `  liftmap repair              # Repair stored catalog records
  liftmap repair --dry-run    # Report what would change
  liftmap repair --force      # Repair even when the payload is unchanged`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client(app)
			if err != nil {
				return err
			}

			res, err := c.RepairSeededExercises(cmd.Context(),
				liftmap.WithRepairDryRun(flags.DryRun),
				liftmap.WithForce(flags.Force),
				liftmap.WithRepairProgress(progressLogger(app)),
			)
			if err != nil {
				return err
			}
			return render(cmd, app, res)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "report changes without writing")
	cmd.Flags().BoolVarP(&flags.Force, "force", "f", false, "repair even when the payload is unchanged")

	return cmd
}
