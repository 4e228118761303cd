package main

import (
	"log/slog"

	"github.com/couchcryptid/activity-weather-insights/internal/config"
	"github.com/couchcryptid/activity-weather-insights/internal/observability"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once configuration is resolved.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

// overrides holds flag values. A flag only replaces the environment value
// when it was set on the command line.
type overrides struct {
	events        string
	weather       string
	weatherSource string
	output        string
	logLevel      string
	logFormat     string
	lat           float64
	lon           float64
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var o overrides

	root := &cobra.Command{
		Use:           "insights",
		Short:         "Correlate daily activity with daily weather",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			o.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = observability.NewLogger(cfg)
			a.metrics = observability.NewMetrics()
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&o.events, "events", "", "events file: CSV, or an Apple Health export.xml (env EVENTS_PATH)")
	f.StringVar(&o.weather, "weather", "", "weather CSV (env WEATHER_PATH)")
	f.StringVar(&o.weatherSource, "weather-source", "", "file or api (env WEATHER_SOURCE)")
	f.StringVar(&o.output, "output", "", "output directory (env OUTPUT_DIR)")
	f.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	f.StringVar(&o.logFormat, "log-format", "", "json or text (env LOG_FORMAT)")
	f.Float64Var(&o.lat, "lat", 0, "weather location latitude (env LOCATION_LAT)")
	f.Float64Var(&o.lon, "lon", 0, "weather location longitude (env LOCATION_LON)")

	root.AddCommand(
		runCmd(a),
		extractCmd(a),
		fetchWeatherCmd(a),
		serveCmd(a),
	)
	return root
}

func (o *overrides) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("events") {
		cfg.EventsPath = o.events
	}
	if flags.Changed("weather") {
		cfg.WeatherPath = o.weather
	}
	if flags.Changed("weather-source") {
		cfg.WeatherSource = o.weatherSource
	}
	if flags.Changed("output") {
		cfg.OutputDir = o.output
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("lat") {
		cfg.LocationLat = o.lat
	}
	if flags.Changed("lon") {
		cfg.LocationLon = o.lon
	}
}
