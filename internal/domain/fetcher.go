package domain

import (
	"context"
	"time"
)

// WeatherFetcher retrieves daily observations for a coordinate over an
// inclusive date range. Values the provider does not report are left nil.
type WeatherFetcher interface {
	FetchDaily(ctx context.Context, at Coordinates, start, end time.Time) ([]WeatherRecord, error)
}
