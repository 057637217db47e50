// Package status provides the status command.
package status

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/liftmap/cmd/application"
	"github.com/agentstation/liftmap/internal/cmd/output"
	"github.com/agentstation/liftmap/pkg/errors"
)

// NewCommand creates the status command.
func NewCommand(app application.Application) *cobra.Command {
	var showAudit bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: "management",
		Short:   "Show catalog seed diagnostics",
		Args:    cobra.NoArgs,
		Long: `Status reports the stored seed state next to live catalog counts: the
catalog version, the last run and its outcome, whether a seed would import,
and how many exercises, equipment items, starter and user-created records
the store holds. It never writes.`,
		Example: `  liftmap status            # Diagnostics table
  liftmap status --audit    # Include the recent run history
  liftmap status -o yaml    # Full seed state`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := app.Client()
			if err != nil {
				return errors.WrapResource("get", "client", "", err)
			}

			d, err := c.SeedDiagnostics(cmd.Context())
			if err != nil {
				return err
			}

			format := output.Format(app.OutputFormat())
			formatter := output.NewFormatter(format)
			w := cmd.OutOrStdout()

			if format != output.FormatTable {
				return formatter.Format(w, d)
			}
			if err := formatter.Format(w, output.DiagnosticsTable(d)); err != nil {
				return err
			}
			if showAudit && d.State != nil && len(d.State.Audit) > 0 {
				return formatter.Format(w, output.AuditTable(d.State.Audit))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAudit, "audit", false, "include the recent run history")

	return cmd
}
