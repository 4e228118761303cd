// Package openmeteo fetches daily weather from the Open-Meteo historical
// archive and adapts it to the pipeline's weather source.
package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
)

// Source fetches a date range for a fixed location one calendar year at a
// time, then fills gaps. It implements pipeline.WeatherSource.
type Source struct {
	fetcher domain.WeatherFetcher
	at      domain.Coordinates
	logger  *slog.Logger
}

// NewSource creates a weather source for the given location.
func NewSource(fetcher domain.WeatherFetcher, at domain.Coordinates, logger *slog.Logger) *Source {
	return &Source{fetcher: fetcher, at: at, logger: logger}
}

// ReadWeather fetches every day from start to end inclusive.
func (s *Source) ReadWeather(ctx context.Context, start, end time.Time) ([]domain.WeatherRecord, error) {
	var all []domain.WeatherRecord
	for _, ch := range yearChunks(domain.DateOf(start), domain.DateOf(end)) {
		records, err := s.fetcher.FetchDaily(ctx, s.at, ch.start, ch.end)
		if err != nil {
			return nil, fmt.Errorf("fetch weather %s..%s: %w",
				ch.start.Format(time.DateOnly), ch.end.Format(time.DateOnly), err)
		}
		all = append(all, records...)
	}

	filled := domain.FillGaps(all)
	s.logger.Info("weather fetched",
		"lat", s.at.Lat,
		"lon", s.at.Lon,
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"days", len(filled),
	)
	return filled, nil
}

type chunk struct {
	start, end time.Time
}

// yearChunks splits [start, end] at calendar-year boundaries.
func yearChunks(start, end time.Time) []chunk {
	var out []chunk
	for cur := start; !cur.After(end); {
		yearEnd := time.Date(cur.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		if yearEnd.After(end) {
			yearEnd = end
		}
		out = append(out, chunk{start: cur, end: yearEnd})
		cur = yearEnd.AddDate(0, 0, 1)
	}
	return out
}
