package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(t *testing.T, start string, minutes float64, steps int64) NormalizedEvent {
	t.Helper()
	s, err := time.Parse(TimestampLayout, start)
	require.NoError(t, err)
	return NewNormalizedEvent(s, s.Add(time.Duration(minutes*float64(time.Minute))), steps, testSource)
}

func TestAggregateDaily_SumsPerDate(t *testing.T) {
	events := []NormalizedEvent{
		event(t, "2024-01-01 08:00:00 +0000", 10, 100),
		event(t, "2024-01-02 09:00:00 +0000", 5, 50),
		event(t, "2024-01-01 12:00:00 +0000", 20, 200),
		event(t, "2024-01-01 18:00:00 +0000", 30, 300),
	}

	days := AggregateDaily(events)
	require.Len(t, days, 2)

	jan1 := days[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), jan1.Date)
	assert.Equal(t, int64(600), jan1.TotalMagnitude)
	assert.Equal(t, 60.0, jan1.TotalDurationMinutes)
	assert.Equal(t, 10.0, jan1.MeanRatePerMinute)
	assert.Equal(t, 3, jan1.EventCount)
	assert.Equal(t, "Monday", jan1.DayOfWeek)
	assert.Equal(t, "January", jan1.MonthName)

	jan2 := days[1]
	assert.Equal(t, int64(50), jan2.TotalMagnitude)
	assert.Equal(t, "Tuesday", jan2.DayOfWeek)
}

func TestAggregateDaily_MeanOfRates(t *testing.T) {
	days := AggregateDaily([]NormalizedEvent{
		event(t, "2024-02-01 08:00:00 +0000", 1, 10),
		event(t, "2024-02-01 09:00:00 +0000", 1, 20),
	})
	require.Len(t, days, 1)
	assert.Equal(t, 15.0, days[0].MeanRatePerMinute)
}

func TestAggregateDaily_ZeroDurationDay(t *testing.T) {
	days := AggregateDaily([]NormalizedEvent{
		event(t, "2024-02-01 08:00:00 +0000", 0, 10),
		event(t, "2024-02-01 09:00:00 +0000", 0, 20),
	})
	require.Len(t, days, 1)
	assert.Equal(t, 0.0, days[0].MeanRatePerMinute)
	assert.Equal(t, int64(30), days[0].TotalMagnitude)
}

func TestAggregateDaily_UsesLocalCalendarDay(t *testing.T) {
	// 00:30 +0300 is 21:30 UTC the previous day.
	days := AggregateDaily([]NormalizedEvent{
		event(t, "2024-03-01 00:30:00 +0300", 10, 700),
	})
	require.Len(t, days, 1)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, "Friday", days[0].DayOfWeek)
	assert.Equal(t, "March", days[0].MonthName)
}

func TestAggregateDaily_StraddlingMidnightLabelsStartDay(t *testing.T) {
	days := AggregateDaily([]NormalizedEvent{
		event(t, "2024-03-31 23:55:00 +0000", 10, 80),
	})
	require.Len(t, days, 1)
	assert.Equal(t, "Sunday", days[0].DayOfWeek)
	assert.Equal(t, "March", days[0].MonthName)
}

func TestAggregateDaily_OneRowPerDistinctDate(t *testing.T) {
	var events []NormalizedEvent
	want := map[time.Time]int64{}
	for d := 1; d <= 10; d++ {
		for h := 0; h < d; h++ {
			start := time.Date(2024, 5, d, h, 0, 0, 0, time.UTC)
			events = append(events, NewNormalizedEvent(start, start.Add(time.Minute), int64(h+1), testSource))
			want[time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)] += int64(h + 1)
		}
	}

	days := AggregateDaily(events)
	require.Len(t, days, len(want))
	for _, day := range days {
		assert.Equal(t, want[day.Date], day.TotalMagnitude, day.Date.Format(time.DateOnly))
	}
}
