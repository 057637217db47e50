package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/liftmap"
	"github.com/agentstation/liftmap/cmd/application"
)

// LinksFlags holds flags for the links command.
type LinksFlags struct {
	DryRun bool
	Force  bool
}

// NewLinksCommand creates the links command.
func NewLinksCommand(app application.Application) *cobra.Command {
	flags := &LinksFlags{}

	cmd := &cobra.Command{
		Use:     "links",
		GroupID: "management",
		Short:   "Recompute exercise progressions and regressions",
		Args:    cobra.NoArgs,
		Long: `Links groups catalog exercises by movement pattern, category and primary
muscle and orders each group by difficulty. Every exercise gets the easier
variations as regressions and the harder ones as progressions.

Without --force only empty progression and regression lists are filled.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client(app)
			if err != nil {
				return err
			}

			res, err := c.RecomputeExerciseLinks(cmd.Context(),
				liftmap.WithLinkDryRun(flags.DryRun),
				liftmap.WithForceLinks(flags.Force),
			)
			if err != nil {
				return err
			}
			return render(cmd, app, res)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "report links without writing")
	cmd.Flags().BoolVarP(&flags.Force, "force", "f", false, "relink exercises that already have links")

	return cmd
}
