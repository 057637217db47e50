// Package pipeline provides the import, seed, repair and links commands.
package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/liftmap"
	"github.com/agentstation/liftmap/cmd/application"
	"github.com/agentstation/liftmap/internal/cmd/output"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/seedstate"
)

// render writes res in the configured format and returns the run error when
// the operation failed, so the process exits non-zero.
func render(cmd *cobra.Command, app application.Application, res *liftmap.Result) error {
	format := output.Format(app.OutputFormat())
	w := cmd.OutOrStdout()
	formatter := output.NewFormatter(format)

	if format == output.FormatTable {
		if err := formatter.Format(w, output.ResultTable(res)); err != nil {
			return err
		}
		if res.Validation != nil && len(res.Validation.InvalidSamples) > 0 {
			if err := formatter.Format(w, output.ValidationTable(res.Validation)); err != nil {
				return err
			}
		}
	} else if err := formatter.Format(w, res); err != nil {
		return err
	}

	if res.OK() {
		return nil
	}
	if res.Err != nil {
		return res.Err
	}
	return &errors.ResourceError{Operation: res.Operation.String(), Resource: "catalog", Message: res.Message}
}

// progressLogger logs stage transitions and persisted batches.
func progressLogger(app application.Application) seedstate.ProgressFunc {
	logger := app.Logger()
	return func(p seedstate.Progress) {
		event := logger.Info().Str("stage", string(p.Stage))
		if p.TotalBatches > 0 {
			event = event.Int("batch", p.Batch).Int("total_batches", p.TotalBatches)
		}
		event.Msg("Progress")
	}
}

func client(app application.Application) (liftmap.Client, error) {
	c, err := app.Client()
	if err != nil {
		return nil, errors.WrapResource("get", "client", "", err)
	}
	return c, nil
}
