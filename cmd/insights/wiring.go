package main

import (
	"path/filepath"
	"strings"

	"github.com/couchcryptid/activity-weather-insights/internal/adapter/csvfile"
	"github.com/couchcryptid/activity-weather-insights/internal/adapter/healthxml"
	kafkaadapter "github.com/couchcryptid/activity-weather-insights/internal/adapter/kafka"
	"github.com/couchcryptid/activity-weather-insights/internal/adapter/openmeteo"
	"github.com/couchcryptid/activity-weather-insights/internal/config"
	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/couchcryptid/activity-weather-insights/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

// eventSource reads an Apple Health export directly when the path ends in
// .xml, and a per-event CSV otherwise.
func (a *app) eventSource() pipeline.EventSource {
	if strings.EqualFold(filepath.Ext(a.cfg.EventsPath), ".xml") {
		return healthxml.NewExtractor(a.cfg.EventsPath, a.cfg.HealthRecordType, a.logger)
	}
	return csvfile.NewEventReader(a.cfg.EventsPath)
}

func (a *app) weatherSource() pipeline.WeatherSource {
	if a.cfg.WeatherSource == config.WeatherSourceAPI {
		return a.archiveSource()
	}
	return csvfile.NewWeatherReader(a.cfg.WeatherPath)
}

func (a *app) archiveSource() *openmeteo.Source {
	client := openmeteo.NewClient(a.cfg.WeatherBaseURL, a.cfg.WeatherTimeout, a.metrics, a.logger)
	cached := openmeteo.NewCachedFetcher(client, a.cfg.WeatherCacheSize, clockwork.NewRealClock(), a.metrics)
	a.logger.Info("open-meteo weather enabled",
		"lat", a.cfg.LocationLat,
		"lon", a.cfg.LocationLon,
		"cache_size", a.cfg.WeatherCacheSize,
		"timeout", a.cfg.WeatherTimeout,
	)
	return openmeteo.NewSource(cached, domain.Coordinates{Lat: a.cfg.LocationLat, Lon: a.cfg.LocationLon}, a.logger)
}

// sinks returns the output sinks and a function that releases them.
func (a *app) sinks() ([]pipeline.Sink, func()) {
	sinks := []pipeline.Sink{csvfile.NewOutputSink(a.cfg.OutputDir, a.logger)}
	if !a.cfg.KafkaEnabled {
		return sinks, func() {}
	}

	writer := kafkaadapter.NewWriter(a.cfg, a.logger, a.metrics)
	a.logger.Info("kafka sink enabled", "brokers", a.cfg.KafkaBrokers, "topic", a.cfg.KafkaSinkTopic)
	return append(sinks, writer), func() {
		if err := writer.Close(); err != nil {
			a.logger.Error("kafka writer close error", "error", err)
		}
	}
}

func (a *app) newPipeline() (*pipeline.Pipeline, func()) {
	sinks, closeSinks := a.sinks()
	return pipeline.New(a.eventSource(), a.weatherSource(), sinks, a.logger, a.metrics), closeSinks
}
