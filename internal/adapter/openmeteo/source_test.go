package openmeteo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearChunks(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       []chunk
	}{
		{
			name:  "single day",
			start: date(2024, 5, 1), end: date(2024, 5, 1),
			want: []chunk{{date(2024, 5, 1), date(2024, 5, 1)}},
		},
		{
			name:  "within a year",
			start: date(2024, 2, 1), end: date(2024, 11, 30),
			want: []chunk{{date(2024, 2, 1), date(2024, 11, 30)}},
		},
		{
			name:  "across three years",
			start: date(2022, 12, 30), end: date(2024, 1, 2),
			want: []chunk{
				{date(2022, 12, 30), date(2022, 12, 31)},
				{date(2023, 1, 1), date(2023, 12, 31)},
				{date(2024, 1, 1), date(2024, 1, 2)},
			},
		},
		{
			name:  "end before start",
			start: date(2024, 2, 1), end: date(2024, 1, 1),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, yearChunks(tt.start, tt.end))
		})
	}
}

// rangeFetcher serves fixed records and remembers the requested ranges.
type rangeFetcher struct {
	records []domain.WeatherRecord
	ranges  [][2]time.Time
	err     error
}

func (f *rangeFetcher) FetchDaily(_ context.Context, _ domain.Coordinates, start, end time.Time) ([]domain.WeatherRecord, error) {
	f.ranges = append(f.ranges, [2]time.Time{start, end})
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.WeatherRecord
	for _, r := range f.records {
		if !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestSource_ReadWeather_ChunksAndFills(t *testing.T) {
	f := &rangeFetcher{records: []domain.WeatherRecord{
		{Date: date(2023, 12, 31), TempMean: nil, Pressure: domain.Float(1010)},
		{Date: date(2024, 1, 1), TempMean: domain.Float(6)},
		{Date: date(2024, 1, 2), TempMean: nil},
	}}
	src := NewSource(f, istanbul, discardLogger())

	got, err := src.ReadWeather(context.Background(), date(2023, 12, 31), date(2024, 1, 2).Add(15*time.Hour))
	require.NoError(t, err)

	require.Len(t, f.ranges, 2)
	assert.Equal(t, [2]time.Time{date(2023, 12, 31), date(2023, 12, 31)}, f.ranges[0])
	assert.Equal(t, [2]time.Time{date(2024, 1, 1), date(2024, 1, 2)}, f.ranges[1])

	require.Len(t, got, 3)
	assert.Equal(t, 6.0, *got[0].TempMean, "leading gap back-filled")
	assert.Equal(t, 6.0, *got[2].TempMean, "trailing gap forward-filled")
	assert.Equal(t, 1010.0, *got[2].Pressure)
}

func TestSource_ReadWeather_Error(t *testing.T) {
	boom := errors.New("boom")
	src := NewSource(&rangeFetcher{err: boom}, istanbul, discardLogger())

	_, err := src.ReadWeather(context.Background(), date(2024, 1, 1), date(2024, 1, 2))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "2024-01-01..2024-01-02")
}
