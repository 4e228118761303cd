package main

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenWeather_Deterministic(t *testing.T) {
	day := time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC)
	a := genWeather(rand.New(rand.NewPCG(1, 2)), day)
	b := genWeather(rand.New(rand.NewPCG(1, 2)), day)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different weather (-a +b):\n%s", diff)
	}
	require.NotNil(t, a.TempMean)
	assert.LessOrEqual(t, *a.TempMin, *a.TempMean)
	assert.GreaterOrEqual(t, *a.TempMax, *a.TempMean)
}

func TestGenEvents_SameLocalDay(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	day := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	w := domain.WeatherRecord{Date: day, TempMean: domain.Float(12), Precipitation: domain.Float(0)}

	events := genEvents(rng, day, w)
	require.NotEmpty(t, events)
	for _, e := range events {
		assert.Equal(t, day.Day(), e.Start.Day())
		assert.True(t, e.End.After(e.Start))
		assert.Positive(t, e.Magnitude)
	}
}
