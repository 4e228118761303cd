package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/couchcryptid/activity-weather-insights/internal/adapter/csvfile"
	"github.com/couchcryptid/activity-weather-insights/internal/pipeline"
	"github.com/spf13/cobra"
)

func runCmd(a *app) *cobra.Command {
	var printReport bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and write the report and tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, closeSinks := a.newPipeline()
			defer closeSinks()

			out, err := p.Run(cmd.Context())
			if err != nil {
				var runErr *pipeline.RunError
				if errors.As(err, &runErr) {
					a.logger.Error("run failed", "run_id", runErr.RunID, "stage", runErr.Stage)
				}
				return err
			}

			a.logger.Info("report written", "path", filepath.Join(a.cfg.OutputDir, csvfile.ReportFile))
			if printReport {
				_, err := fmt.Fprint(cmd.OutOrStdout(), out.Report.Render())
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&printReport, "print", false, "also print the report to stdout")
	return cmd
}
