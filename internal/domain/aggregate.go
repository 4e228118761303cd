package domain

import (
	"sort"
	"time"
)

// dailyState accumulates one calendar day while scanning events.
type dailyState struct {
	magnitude int64
	duration  float64
	rateSum   float64
	count     int
}

// AggregateDaily groups events by the calendar date of their start time and
// returns one aggregate per distinct date, sorted by date.
func AggregateDaily(events []NormalizedEvent) []DailyAggregate {
	states := make(map[time.Time]*dailyState)
	for _, ev := range events {
		day := DateOf(ev.Start)
		st, ok := states[day]
		if !ok {
			st = &dailyState{}
			states[day] = st
		}
		st.magnitude += ev.Magnitude
		st.duration += ev.DurationMinutes
		st.rateSum += ev.RatePerMinute
		st.count++
	}

	out := make([]DailyAggregate, 0, len(states))
	for day, st := range states {
		out = append(out, DailyAggregate{
			Date:                 day,
			TotalMagnitude:       st.magnitude,
			TotalDurationMinutes: st.duration,
			MeanRatePerMinute:    st.rateSum / float64(st.count),
			DayOfWeek:            day.Weekday().String(),
			MonthName:            day.Month().String(),
			EventCount:           st.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
