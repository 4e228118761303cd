package main

import (
	"fmt"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/adapter/csvfile"
	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/spf13/cobra"
)

func fetchWeatherCmd(a *app) *cobra.Command {
	var (
		start string
		end   string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "fetch-weather",
		Short: "Download daily weather from the Open-Meteo archive into the weather CSV",
		Long: "Downloads daily weather for LOCATION_LAT/LOCATION_LON. Without --start and --end\n" +
			"the range covers the first through last day of the events file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = a.cfg.WeatherPath
			}

			from, to, err := a.fetchRange(cmd, start, end)
			if err != nil {
				return err
			}

			records, err := a.archiveSource().ReadWeather(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if err := csvfile.WriteWeather(out, records); err != nil {
				return err
			}
			a.logger.Info("weather written", "path", out, "days", len(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&out, "out", "", "weather CSV to write (default WEATHER_PATH)")
	cmd.MarkFlagsRequiredTogether("start", "end")
	return cmd
}

// fetchRange parses --start/--end, or derives the range from the events file.
func (a *app) fetchRange(cmd *cobra.Command, start, end string) (time.Time, time.Time, error) {
	if start != "" {
		from, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
		to, err := time.Parse(time.DateOnly, end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("--end %s is before --start %s", end, start)
		}
		return from, to, nil
	}

	records, err := a.eventSource().ReadEvents(cmd.Context())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	res, err := domain.NormalizeEvents(records, a.logger)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	days := domain.AggregateDaily(res.Events)
	return days[0].Date, days[len(days)-1].Date, nil
}
