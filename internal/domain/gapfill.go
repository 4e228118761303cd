package domain

import (
	"sort"
)

// weatherFields exposes each nullable numeric column of a WeatherRecord.
var weatherFields = []func(*WeatherRecord) **float64{
	func(w *WeatherRecord) **float64 { return &w.TempMean },
	func(w *WeatherRecord) **float64 { return &w.TempMin },
	func(w *WeatherRecord) **float64 { return &w.TempMax },
	func(w *WeatherRecord) **float64 { return &w.Precipitation },
	func(w *WeatherRecord) **float64 { return &w.Snow },
	func(w *WeatherRecord) **float64 { return &w.WindDirection },
	func(w *WeatherRecord) **float64 { return &w.WindSpeed },
	func(w *WeatherRecord) **float64 { return &w.WindGust },
	func(w *WeatherRecord) **float64 { return &w.Pressure },
	func(w *WeatherRecord) **float64 { return &w.SunshineHours },
}

// FillGaps returns a date-sorted copy of records where every absent value is
// replaced by the previous known value of the same column, and any leading
// gap by the first known value. A column with no known values stays absent.
func FillGaps(records []WeatherRecord) []WeatherRecord {
	out := make([]WeatherRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	for _, field := range weatherFields {
		// forward
		var last *float64
		for i := range out {
			p := field(&out[i])
			if *p != nil {
				last = *p
				continue
			}
			if last != nil {
				*p = Float(*last)
			}
		}
		// backward
		var next *float64
		for i := len(out) - 1; i >= 0; i-- {
			p := field(&out[i])
			if *p != nil {
				next = *p
				continue
			}
			if next != nil {
				*p = Float(*next)
			}
		}
	}
	return out
}
