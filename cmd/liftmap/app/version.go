package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/liftmap/cmd/application"
	"github.com/agentstation/liftmap/internal/cmd/output"
)

type versionInfo struct {
	application.BuildInfo `yaml:",inline"`
	CatalogVersion        string `json:"catalog_version" yaml:"catalog_version"`
	GoVersion             string `json:"go_version" yaml:"go_version"`
	Platform              string `json:"platform" yaml:"platform"`
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versionInfo{
				BuildInfo:      a.Build(),
				CatalogVersion: a.config.CatalogVersion,
				GoVersion:      runtime.Version(),
				Platform:       runtime.GOOS + "/" + runtime.GOARCH,
			}

			w := cmd.OutOrStdout()
			format := output.Format(a.OutputFormat())
			if format != output.FormatTable {
				return output.NewFormatter(format).Format(w, info)
			}

			fmt.Fprintf(w, "liftmap version %s\n", info.Version)
			fmt.Fprintf(w, "commit: %s\n", info.Commit)
			fmt.Fprintf(w, "built: %s by %s\n", info.Date, info.BuiltBy)
			fmt.Fprintf(w, "catalog version: %s\n", info.CatalogVersion)
			fmt.Fprintf(w, "go: %s (%s)\n", info.GoVersion, info.Platform)
			return nil
		},
	}
}
