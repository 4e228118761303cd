package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
)

// weatherColumn binds a WeatherRecord field to its canonical column name and
// the Meteostat short name accepted as an alias.
type weatherColumn struct {
	name  string
	alias string
	field func(*domain.WeatherRecord) **float64
}

var weatherColumns = []weatherColumn{
	{"temp_mean", "tavg", func(w *domain.WeatherRecord) **float64 { return &w.TempMean }},
	{"temp_min", "tmin", func(w *domain.WeatherRecord) **float64 { return &w.TempMin }},
	{"temp_max", "tmax", func(w *domain.WeatherRecord) **float64 { return &w.TempMax }},
	{"precipitation", "prcp", func(w *domain.WeatherRecord) **float64 { return &w.Precipitation }},
	{"snow", "snow", func(w *domain.WeatherRecord) **float64 { return &w.Snow }},
	{"wind_direction", "wdir", func(w *domain.WeatherRecord) **float64 { return &w.WindDirection }},
	{"wind_speed", "wspd", func(w *domain.WeatherRecord) **float64 { return &w.WindSpeed }},
	{"wind_gust", "wpgt", func(w *domain.WeatherRecord) **float64 { return &w.WindGust }},
	{"pressure", "pres", func(w *domain.WeatherRecord) **float64 { return &w.Pressure }},
	{"sunshine_hours", "tsun", func(w *domain.WeatherRecord) **float64 { return &w.SunshineHours }},
}

// WeatherReader reads daily weather from a CSV file.
// It implements pipeline.WeatherSource.
type WeatherReader struct {
	path string
}

// NewWeatherReader creates a reader for the CSV at path.
func NewWeatherReader(path string) *WeatherReader {
	return &WeatherReader{path: path}
}

// ReadWeather returns every row of the file. The range is ignored: rows
// outside it are dropped by the join and counted there.
func (r *WeatherReader) ReadWeather(_ context.Context, _, _ time.Time) ([]domain.WeatherRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open weather: %w", err)
	}
	defer f.Close()

	records, err := DecodeWeather(f)
	if err != nil {
		return nil, fmt.Errorf("weather %s: %w", r.path, err)
	}
	return records, nil
}

// DecodeWeather reads one record per row. The date column is "time" or
// "date" holding YYYY-MM-DD, optionally followed by a time of day. Empty
// cells are absent values; unknown columns are ignored.
func DecodeWeather(in io.Reader) ([]domain.WeatherRecord, error) {
	r := newReader(in)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	dateIdx, err := h.require("time", "date")
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(weatherColumns))
	for i, c := range weatherColumns {
		idx[i] = h.find(c.name, c.alias)
	}

	var out []domain.WeatherRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseDate(cell(row, dateIdx))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec := domain.WeatherRecord{Date: date}
		for i, c := range weatherColumns {
			s := cell(row, idx[i])
			if s == "" || strings.EqualFold(s, "nan") {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: invalid number %q", line, c.name, s)
			}
			*c.field(&rec) = domain.Float(v)
		}
		out = append(out, rec)
	}
}

func parseDate(s string) (time.Time, error) {
	if len(s) < len(time.DateOnly) {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	d, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

// WriteWeather writes records with a "date" column followed by the canonical
// weather columns.
func WriteWeather(path string, records []domain.WeatherRecord) error {
	return writeCSV(path, func(w *csv.Writer) error {
		head := []string{"date"}
		for _, c := range weatherColumns {
			head = append(head, c.name)
		}
		if err := w.Write(head); err != nil {
			return err
		}
		for i := range records {
			rec := records[i]
			row := []string{rec.Date.Format(time.DateOnly)}
			for _, c := range weatherColumns {
				row = append(row, formatOptional(*c.field(&rec)))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
