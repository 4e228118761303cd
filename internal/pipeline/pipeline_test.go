package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/couchcryptid/activity-weather-insights/internal/observability"
	"github.com/couchcryptid/activity-weather-insights/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockEvents struct {
	records []domain.RawEventRecord
	err     error
}

func (m *mockEvents) ReadEvents(_ context.Context) ([]domain.RawEventRecord, error) {
	return m.records, m.err
}

type mockWeather struct {
	records    []domain.WeatherRecord
	err        error
	start, end time.Time
}

func (m *mockWeather) ReadWeather(_ context.Context, start, end time.Time) ([]domain.WeatherRecord, error) {
	m.start, m.end = start, end
	return m.records, m.err
}

type mockSink struct {
	outs []*pipeline.Output
	err  error
	done chan struct{}
}

func (m *mockSink) Write(_ context.Context, out *pipeline.Output) error {
	if m.err != nil {
		return m.err
	}
	m.outs = append(m.outs, out)
	if m.done != nil {
		m.done <- struct{}{}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rawEvent(start, end, steps string) domain.RawEventRecord {
	return domain.RawEventRecord{Start: start, End: end, Magnitude: steps, Source: "iPhone"}
}

func jan(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func wx(date time.Time, temp, precip float64) domain.WeatherRecord {
	return domain.WeatherRecord{Date: date, TempMean: domain.Float(temp), Precipitation: domain.Float(precip)}
}

// singleDay is three walks on 2024-01-01 totalling 600 steps.
func singleDay() *mockEvents {
	return &mockEvents{records: []domain.RawEventRecord{
		rawEvent("2024-01-01 08:00:00 +0300", "2024-01-01 08:10:00 +0300", "100"),
		rawEvent("2024-01-01 12:00:00 +0300", "2024-01-01 12:20:00 +0300", "200"),
		rawEvent("2024-01-01 18:00:00 +0300", "2024-01-01 18:30:00 +0300", "300"),
	}}
}

func lines(t *testing.T, out *pipeline.Output, title string) []string {
	t.Helper()
	s, ok := out.Report.Section(title)
	require.True(t, ok, "missing section %q", title)
	return s.Lines
}

// --- tests ---

func TestPipeline_Run_SingleDay(t *testing.T) {
	weather := &mockWeather{records: []domain.WeatherRecord{wx(jan(1), 10, 0)}}
	sink := &mockSink{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(singleDay(), weather, []pipeline.Sink{sink}, discardLogger(), metrics)

	out, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, jan(1), weather.start)
	assert.Equal(t, jan(1), weather.end)

	assert.Equal(t, []string{
		"Total days analyzed: 1",
		"Average daily steps: 600",
		"Highest step count: 600 steps",
		"Lowest step count: 600 steps",
	}, lines(t, out, domain.SectionOverall))
	assert.Contains(t, lines(t, out, domain.SectionRecommendations), "  Temperature range: Mild")
	assert.Contains(t, lines(t, out, domain.SectionRecommendations), "  Weather: Clear")

	want := pipeline.Counts{Events: 3, Normalized: 3, Days: 1, Weather: 1, Joined: 1, Degenerate: out.Report.Degenerate}
	if diff := cmp.Diff(want, out.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, sink.outs, 1)
	assert.Same(t, out, sink.outs[0])
	assert.Same(t, out, p.Latest())
	assert.NotEmpty(t, out.RunID)
	require.NoError(t, p.CheckReadiness(context.Background()))

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.EventsReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DaysAggregated))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DaysJoined))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("success")))
	assert.Equal(t, float64(out.Report.Degenerate), testutil.ToFloat64(metrics.DegenerateStatistics))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PipelineRunning))
}

func TestPipeline_Run_CountsSkips(t *testing.T) {
	events := singleDay()
	events.records = append(events.records,
		rawEvent("not a time", "2024-01-01 08:00:00 +0300", "10"),
		rawEvent("2024-01-01 09:00:00 +0300", "2024-01-01 08:00:00 +0300", "10"),
	)
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(events, &mockWeather{records: []domain.WeatherRecord{wx(jan(1), 10, 0)}}, nil, discardLogger(), metrics)

	out, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, out.Counts.Events)
	assert.Equal(t, 3, out.Counts.Normalized)
	assert.Equal(t, 2, out.Counts.Skipped)
	assert.Equal(t, map[string]int{domain.SkipBadTimestamp: 1, domain.SkipEndBeforeStart: 1}, out.SkipReasons)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsSkipped.WithLabelValues(domain.SkipBadTimestamp)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsSkipped.WithLabelValues(domain.SkipEndBeforeStart)))
}

func TestPipeline_Run_WeatherRangeSpansActivity(t *testing.T) {
	events := &mockEvents{records: []domain.RawEventRecord{
		rawEvent("2024-01-05 08:00:00 +0000", "2024-01-05 08:10:00 +0000", "100"),
		rawEvent("2024-01-02 08:00:00 +0000", "2024-01-02 08:10:00 +0000", "100"),
		rawEvent("2024-01-09 08:00:00 +0000", "2024-01-09 08:10:00 +0000", "100"),
	}}
	weather := &mockWeather{records: []domain.WeatherRecord{wx(jan(2), 1, 0), wx(jan(9), 1, 0)}}

	p := pipeline.New(events, weather, nil, discardLogger(), observability.NewMetricsForTesting())
	out, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, jan(2), weather.start)
	assert.Equal(t, jan(9), weather.end)
	assert.Equal(t, 2, out.Counts.Joined)
	assert.Equal(t, 1, out.Counts.ActivityOnly)
}

func TestPipeline_Run_EmptyInput(t *testing.T) {
	events := &mockEvents{records: []domain.RawEventRecord{
		rawEvent("", "", "1"),
		rawEvent("2024-01-01 08:00:00 +0000", "2024-01-01 08:01:00 +0000", "many"),
	}}
	weather := &mockWeather{}
	sink := &mockSink{}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(events, weather, []pipeline.Sink{sink}, discardLogger(), metrics)

	out, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, out)

	var empty *domain.EmptyInputError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, 2, empty.Skipped)

	var runErr *pipeline.RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, pipeline.StageNormalize, runErr.Stage)
	assert.Contains(t, err.Error(), "events=2 normalized=0")

	assert.Empty(t, sink.outs)
	assert.True(t, weather.start.IsZero(), "weather must not be read")
	require.Error(t, p.CheckReadiness(context.Background()))
	assert.Nil(t, p.Latest())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("error")))
}

func TestPipeline_Run_NoOverlap(t *testing.T) {
	weather := &mockWeather{records: []domain.WeatherRecord{wx(jan(2), 1, 0), wx(jan(3), 1, 0)}}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(singleDay(), weather, nil, discardLogger(), metrics)

	_, err := p.Run(context.Background())

	var noOverlap *domain.NoOverlapError
	require.ErrorAs(t, err, &noOverlap)
	var runErr *pipeline.RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, pipeline.StageJoin, runErr.Stage)
	assert.Equal(t, 1, runErr.Counts.Days)
	assert.Equal(t, 2, runErr.Counts.Weather)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DaysDropped.WithLabelValues("activity")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DaysDropped.WithLabelValues("weather")))
}

func TestPipeline_Run_SourceErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		events  *mockEvents
		weather *mockWeather
		sink    *mockSink
		stage   string
	}{
		{"events", &mockEvents{err: boom}, &mockWeather{}, &mockSink{}, pipeline.StageReadEvents},
		{"weather", singleDay(), &mockWeather{err: boom}, &mockSink{}, pipeline.StageReadWeather},
		{"sink", singleDay(), &mockWeather{records: []domain.WeatherRecord{wx(jan(1), 1, 0)}}, &mockSink{err: boom}, pipeline.StageWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pipeline.New(tt.events, tt.weather, []pipeline.Sink{tt.sink}, discardLogger(), observability.NewMetricsForTesting())

			_, err := p.Run(context.Background())
			require.ErrorIs(t, err, boom)

			var runErr *pipeline.RunError
			require.ErrorAs(t, err, &runErr)
			assert.Equal(t, tt.stage, runErr.Stage)
			assert.NotEmpty(t, runErr.RunID)
			assert.Error(t, p.CheckReadiness(context.Background()))
		})
	}
}

func TestPipeline_Run_IncompleteWeatherKept(t *testing.T) {
	weather := &mockWeather{records: []domain.WeatherRecord{{Date: jan(1), TempMean: domain.Float(10)}}}
	p := pipeline.New(singleDay(), weather, nil, discardLogger(), observability.NewMetricsForTesting())

	out, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, out.Counts.Incomplete)
	require.Len(t, out.Merged, 1)
	assert.Empty(t, out.Merged[0].WeatherCondition)
	assert.Contains(t, lines(t, out, domain.SectionRecommendations), "  Weather: n/a")
}

func TestPipeline_Run_ProducesChartTables(t *testing.T) {
	p := pipeline.New(singleDay(), &mockWeather{records: []domain.WeatherRecord{wx(jan(1), 10, 0)}}, nil, discardLogger(), observability.NewMetricsForTesting())

	out, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, out.Events, 3)
	assert.Equal(t, []domain.CrossCell{{Row: "2024", Col: "1", Mean: 600, Count: 1}}, out.YearMonth)
	assert.Equal(t, []domain.CrossCell{{Row: domain.TempMild, Col: "Monday", Mean: 600, Count: 1}}, out.TempDay)
	assert.Len(t, out.Hourly, 3)
	assert.Equal(t, domain.CorrelationColumns, out.Corr.Columns)
}

func TestPipeline_RunEvery(t *testing.T) {
	clk := clockwork.NewFakeClock()
	sink := &mockSink{done: make(chan struct{}, 1)}
	p := pipeline.New(singleDay(), &mockWeather{records: []domain.WeatherRecord{wx(jan(1), 10, 0)}}, []pipeline.Sink{sink}, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- p.RunEvery(ctx, time.Hour, clk) }()

	waitFor := func() {
		select {
		case <-sink.done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for run")
		}
	}

	waitFor()
	clk.Advance(time.Hour)
	waitFor()

	cancel()
	require.NoError(t, <-errCh)
	assert.Len(t, sink.outs, 2)
	assert.NotEqual(t, sink.outs[0].RunID, sink.outs[1].RunID)
}

func TestPipeline_RunEvery_NoRunAfterCancel(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(cancel context.CancelFunc, clk *clockwork.FakeClock, waitFor func())
		wantRuns int
	}{
		{
			name:     "cancelled before start",
			prepare:  func(cancel context.CancelFunc, _ *clockwork.FakeClock, _ func()) { cancel() },
			wantRuns: 0,
		},
		{
			name: "tick pending at cancel",
			prepare: func(cancel context.CancelFunc, clk *clockwork.FakeClock, waitFor func()) {
				waitFor()
				cancel()
				clk.Advance(time.Hour)
			},
			wantRuns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := clockwork.NewFakeClock()
			sink := &mockSink{done: make(chan struct{}, 2)}
			p := pipeline.New(singleDay(), &mockWeather{records: []domain.WeatherRecord{wx(jan(1), 10, 0)}}, []pipeline.Sink{sink}, discardLogger(), observability.NewMetricsForTesting())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			waitFor := func() {
				select {
				case <-sink.done:
				case <-time.After(5 * time.Second):
					t.Fatal("timed out waiting for run")
				}
			}

			if tt.wantRuns == 0 {
				tt.prepare(cancel, clk, waitFor)
				require.NoError(t, p.RunEvery(ctx, time.Hour, clk))
			} else {
				errCh := make(chan error, 1)
				go func() { errCh <- p.RunEvery(ctx, time.Hour, clk) }()
				tt.prepare(cancel, clk, waitFor)
				require.NoError(t, <-errCh)
			}
			assert.Len(t, sink.outs, tt.wantRuns)
		})
	}
}
