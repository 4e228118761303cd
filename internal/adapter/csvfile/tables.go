package csvfile

import (
	"encoding/csv"
	"strconv"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
)

// MergedColumns is the header of merged_daily.csv.
var MergedColumns = []string{
	"date", "total_magnitude", "total_duration_minutes", "mean_rate_per_minute", "event_count",
	"day_of_week", "month_name",
	"temp_mean", "temp_min", "temp_max", "precipitation", "snow",
	"wind_direction", "wind_speed", "wind_gust", "pressure", "sunshine_hours",
	"weather_condition", "temp_range", "year", "month_num", "rolling_30day_mean",
}

// WriteMerged writes one row per joined day with base and derived columns.
func WriteMerged(path string, records []domain.MergedRecord) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write(MergedColumns); err != nil {
			return err
		}
		for i := range records {
			r := &records[i]
			wx := r.Weather
			if err := w.Write([]string{
				r.Date.Format(time.DateOnly),
				strconv.FormatInt(r.TotalMagnitude, 10),
				formatFloat(r.TotalDurationMinutes),
				formatFloat(r.MeanRatePerMinute),
				strconv.Itoa(r.EventCount),
				r.DayOfWeek,
				r.MonthName,
				formatOptional(wx.TempMean),
				formatOptional(wx.TempMin),
				formatOptional(wx.TempMax),
				formatOptional(wx.Precipitation),
				formatOptional(wx.Snow),
				formatOptional(wx.WindDirection),
				formatOptional(wx.WindSpeed),
				formatOptional(wx.WindGust),
				formatOptional(wx.Pressure),
				formatOptional(wx.SunshineHours),
				r.WeatherCondition,
				r.TempRange,
				strconv.Itoa(r.Year),
				strconv.Itoa(r.MonthNum),
				formatOptional(r.Rolling30),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCorrelation writes the matrix with a leading column of row names.
// Degenerate cells are left empty.
func WriteCorrelation(path string, m domain.CorrMatrix) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write(append([]string{""}, m.Columns...)); err != nil {
			return err
		}
		for i, name := range m.Columns {
			row := []string{name}
			for _, v := range m.Values[i] {
				row = append(row, formatOptional(v))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCross writes a two-key breakdown in long form.
func WriteCross(path, rowName, colName string, cells []domain.CrossCell) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{rowName, colName, "mean_magnitude", "days"}); err != nil {
			return err
		}
		for _, c := range cells {
			if err := w.Write([]string{c.Row, c.Col, formatFloat(c.Mean), strconv.Itoa(c.Count)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteHourly writes the mean event magnitude by start hour.
func WriteHourly(path string, stats []domain.HourStat) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"hour", "mean_magnitude", "events"}); err != nil {
			return err
		}
		for _, s := range stats {
			if err := w.Write([]string{strconv.Itoa(s.Hour), formatFloat(s.Mean), strconv.Itoa(s.Count)}); err != nil {
				return err
			}
		}
		return nil
	})
}
