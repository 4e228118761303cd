package domain

import "time"

// RawEventRecord is an activity observation as handed over by an extractor.
// Fields are kept as strings; parsing happens in NormalizeEvents.
type RawEventRecord struct {
	Start     string
	End       string
	Magnitude string
	Source    string
}

// NormalizedEvent is a parsed activity observation with its derived duration
// and per-minute rate.
type NormalizedEvent struct {
	Start           time.Time `json:"start_timestamp"`
	End             time.Time `json:"end_timestamp"`
	Magnitude       int64     `json:"magnitude"`
	Source          string    `json:"source"`
	DurationMinutes float64   `json:"duration_minutes"`
	RatePerMinute   float64   `json:"rate_per_minute"`
}

// DailyAggregate is the per-calendar-day rollup of normalized events.
type DailyAggregate struct {
	Date                 time.Time `json:"date"`
	TotalMagnitude       int64     `json:"total_magnitude"`
	TotalDurationMinutes float64   `json:"total_duration_minutes"`
	MeanRatePerMinute    float64   `json:"mean_rate_per_minute"`
	DayOfWeek            string    `json:"day_of_week"`
	MonthName            string    `json:"month_name"`
	EventCount           int       `json:"event_count"`
}

// WeatherRecord is one day of environmental observations. A nil field means
// the value is absent.
type WeatherRecord struct {
	Date          time.Time `json:"date"`
	TempMean      *float64  `json:"temp_mean,omitempty"`
	TempMin       *float64  `json:"temp_min,omitempty"`
	TempMax       *float64  `json:"temp_max,omitempty"`
	Precipitation *float64  `json:"precipitation,omitempty"`
	Snow          *float64  `json:"snow,omitempty"`
	WindDirection *float64  `json:"wind_direction,omitempty"`
	WindSpeed     *float64  `json:"wind_speed,omitempty"`
	WindGust      *float64  `json:"wind_gust,omitempty"`
	Pressure      *float64  `json:"pressure,omitempty"`
	SunshineHours *float64  `json:"sunshine_hours,omitempty"`
}

// MergedRecord is a daily aggregate joined with the weather for the same day.
// The fields after Weather are derived by DeriveFeatures.
type MergedRecord struct {
	DailyAggregate
	Weather WeatherRecord `json:"weather"`

	WeatherCondition string   `json:"weather_condition,omitempty"`
	TempRange        string   `json:"temp_range,omitempty"`
	Year             int      `json:"year,omitempty"`
	MonthNum         int      `json:"month_num,omitempty"`
	Rolling30        *float64 `json:"rolling_30day_mean,omitempty"`
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DateOf returns the calendar day of t in t's own zone, as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
