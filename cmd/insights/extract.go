package main

import (
	"github.com/couchcryptid/activity-weather-insights/internal/adapter/csvfile"
	"github.com/couchcryptid/activity-weather-insights/internal/adapter/healthxml"
	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/spf13/cobra"
)

func extractCmd(a *app) *cobra.Command {
	var (
		input      string
		out        string
		recordType string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Convert an Apple Health export.xml into the events CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if recordType == "" {
				recordType = a.cfg.HealthRecordType
			}
			if out == "" {
				out = a.cfg.EventsPath
			}

			records, err := healthxml.NewExtractor(input, recordType, a.logger).ReadEvents(cmd.Context())
			if err != nil {
				return err
			}
			res, err := domain.NormalizeEvents(records, a.logger)
			if err != nil {
				return err
			}
			if err := csvfile.WriteEvents(out, res.Events); err != nil {
				return err
			}

			a.logger.Info("events extracted",
				"path", out,
				"records", res.Received,
				"written", len(res.Events),
				"skipped", res.Skipped,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "export.xml", "Apple Health export file")
	cmd.Flags().StringVar(&out, "out", "", "events CSV to write (default EVENTS_PATH)")
	cmd.Flags().StringVar(&recordType, "type", "", "record type to extract (default HEALTH_RECORD_TYPE)")
	return cmd
}
