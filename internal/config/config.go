package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Weather sources.
const (
	WeatherSourceFile = "file"
	WeatherSourceAPI  = "api"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	EventsPath       string
	WeatherPath      string
	WeatherSource    string
	OutputDir        string
	HealthRecordType string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	RefreshInterval time.Duration

	// Open-Meteo archive configuration.
	LocationLat      float64
	LocationLon      float64
	WeatherBaseURL   string
	WeatherTimeout   time.Duration
	WeatherCacheSize int

	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	refresh, err := parsePositiveDuration("REFRESH_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	lat, err := parseFloat("LOCATION_LAT", 41.0082)
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("LOCATION_LON", 28.9784)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		EventsPath:       sharedcfg.EnvOrDefault("EVENTS_PATH", "data/step_data.csv"),
		WeatherPath:      sharedcfg.EnvOrDefault("WEATHER_PATH", "data/weather_data.csv"),
		WeatherSource:    sharedcfg.EnvOrDefault("WEATHER_SOURCE", WeatherSourceFile),
		OutputDir:        sharedcfg.EnvOrDefault("OUTPUT_DIR", "output"),
		HealthRecordType: sharedcfg.EnvOrDefault("HEALTH_RECORD_TYPE", "HKQuantityTypeIdentifierStepCount"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RefreshInterval: refresh,

		LocationLat:      lat,
		LocationLon:      lon,
		WeatherBaseURL:   sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://archive-api.open-meteo.com/v1/archive"),
		WeatherTimeout:   weatherTimeout,
		WeatherCacheSize: parseWeatherCacheSize(),

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "daily-activity-weather"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints. It is called by Load and again
// after command-line overrides are applied.
func (c *Config) Validate() error {
	if c.EventsPath == "" {
		return errors.New("EVENTS_PATH is required")
	}
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	switch c.WeatherSource {
	case WeatherSourceFile:
		if c.WeatherPath == "" {
			return errors.New("WEATHER_PATH is required when WEATHER_SOURCE is file")
		}
	case WeatherSourceAPI:
		if c.WeatherBaseURL == "" {
			return errors.New("WEATHER_BASE_URL is required when WEATHER_SOURCE is api")
		}
	default:
		return errors.New("WEATHER_SOURCE must be file or api")
	}
	if c.LocationLat < -90 || c.LocationLat > 90 {
		return errors.New("LOCATION_LAT must be between -90 and 90")
	}
	if c.LocationLon < -180 || c.LocationLon > 180 {
		return errors.New("LOCATION_LON must be between -180 and 180")
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaSinkTopic == "" {
			return errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	return nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}

func parseWeatherCacheSize() int {
	if s := os.Getenv("WEATHER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 64
}
