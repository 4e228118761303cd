package domain

import "time"

// JoinResult is the inner join of daily aggregates and weather, with counts
// of what was dropped on each side.
type JoinResult struct {
	Records          []MergedRecord
	ActivityOnly     int // activity days with no weather row
	WeatherOnly      int // weather days with no activity
	DuplicateWeather int // repeated weather dates, first occurrence kept
	Incomplete       int // joined days missing temp_mean or precipitation
}

// JoinDaily inner-joins aggregates with weather on exact calendar date.
// Returns a *NoOverlapError when no date appears on both sides.
func JoinDaily(aggregates []DailyAggregate, weather []WeatherRecord) (JoinResult, error) {
	var res JoinResult

	byDate := make(map[time.Time]WeatherRecord, len(weather))
	for _, w := range weather {
		day := DateOf(w.Date)
		if _, dup := byDate[day]; dup {
			res.DuplicateWeather++
			continue
		}
		w.Date = day
		byDate[day] = w
	}

	matched := make(map[time.Time]struct{}, len(aggregates))
	res.Records = make([]MergedRecord, 0, len(aggregates))
	for _, agg := range aggregates {
		day := DateOf(agg.Date)
		w, ok := byDate[day]
		if !ok {
			res.ActivityOnly++
			continue
		}
		matched[day] = struct{}{}
		if w.TempMean == nil || w.Precipitation == nil {
			res.Incomplete++
		}
		agg.Date = day
		res.Records = append(res.Records, MergedRecord{DailyAggregate: agg, Weather: w})
	}
	res.WeatherOnly = len(byDate) - len(matched)

	if len(res.Records) == 0 {
		return res, &NoOverlapError{Aggregates: len(aggregates), Weather: len(weather)}
	}
	return res, nil
}
