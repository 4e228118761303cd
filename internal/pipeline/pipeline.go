package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
	"github.com/couchcryptid/activity-weather-insights/internal/observability"
	"github.com/google/uuid"
)

// EventSource reads raw activity records.
type EventSource interface {
	ReadEvents(ctx context.Context) ([]domain.RawEventRecord, error)
}

// WeatherSource reads daily weather covering the inclusive date range.
type WeatherSource interface {
	ReadWeather(ctx context.Context, start, end time.Time) ([]domain.WeatherRecord, error)
}

// Sink receives the output of a successful run.
type Sink interface {
	Write(ctx context.Context, out *Output) error
}

// Stage names, used in errors, logs and the stage_duration_seconds metric.
const (
	StageReadEvents  = "read_events"
	StageNormalize   = "normalize"
	StageAggregate   = "aggregate"
	StageReadWeather = "read_weather"
	StageJoin        = "join"
	StageDerive      = "derive"
	StageSummarize   = "summarize"
	StageWrite       = "write"
)

// Counts records how many rows each stage saw.
type Counts struct {
	Events           int `json:"events" yaml:"events"`
	Normalized       int `json:"normalized" yaml:"normalized"`
	Skipped          int `json:"skipped" yaml:"skipped"`
	Days             int `json:"days" yaml:"days"`
	Weather          int `json:"weather" yaml:"weather"`
	Joined           int `json:"joined" yaml:"joined"`
	ActivityOnly     int `json:"activity_only" yaml:"activity_only"`
	WeatherOnly      int `json:"weather_only" yaml:"weather_only"`
	DuplicateWeather int `json:"duplicate_weather" yaml:"duplicate_weather"`
	Incomplete       int `json:"incomplete" yaml:"incomplete"`
	Degenerate       int `json:"degenerate" yaml:"degenerate"`
}

// Output is everything a run produces.
type Output struct {
	RunID       string
	GeneratedAt time.Time
	Counts      Counts
	SkipReasons map[string]int

	Events    []domain.NormalizedEvent
	Merged    []domain.MergedRecord
	Corr      domain.CorrMatrix
	YearMonth []domain.CrossCell
	TempDay   []domain.CrossCell
	Hourly    []domain.HourStat
	Report    domain.InsightReport
}

// RunError wraps a fatal stage error with the counts reached so far.
type RunError struct {
	RunID  string
	Stage  string
	Counts Counts
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s failed (events=%d normalized=%d days=%d weather=%d): %v",
		e.Stage, e.Counts.Events, e.Counts.Normalized, e.Counts.Days, e.Counts.Weather, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Pipeline runs the normalize, aggregate, join, derive and summarize stages
// over one batch of inputs and hands the result to its sinks.
type Pipeline struct {
	events  EventSource
	weather WeatherSource
	sinks   []Sink
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
	latest  atomic.Pointer[Output]
}

// New creates a Pipeline with the given sources, sinks and observability.
func New(events EventSource, weather WeatherSource, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		events:  events,
		weather: weather,
		sinks:   sinks,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Latest returns the output of the most recent successful run, or nil.
func (p *Pipeline) Latest() *Output {
	return p.latest.Load()
}

// Run executes one batch. Fatal errors are returned as *RunError.
func (p *Pipeline) Run(ctx context.Context) (*Output, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	logger.Info("pipeline run started")

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := time.Now()
	out, err := p.run(ctx, runID, logger)
	if err != nil {
		p.metrics.Runs.WithLabelValues("error").Inc()
		logger.Error("pipeline run failed", "error", err)
		return nil, err
	}

	p.metrics.Runs.WithLabelValues("success").Inc()
	p.latest.Store(out)
	p.ready.Store(true)
	logger.Info("pipeline run complete",
		"days", out.Counts.Joined,
		"degenerate", out.Counts.Degenerate,
		"duration", time.Since(start),
	)
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, runID string, logger *slog.Logger) (*Output, error) {
	out := &Output{RunID: runID}
	c := &out.Counts
	fail := func(stage string, err error) error {
		return &RunError{RunID: runID, Stage: stage, Counts: *c, Err: err}
	}

	var raw []domain.RawEventRecord
	err := p.timed(StageReadEvents, func() (err error) {
		raw, err = p.events.ReadEvents(ctx)
		return err
	})
	if err != nil {
		return nil, fail(StageReadEvents, err)
	}
	c.Events = len(raw)
	p.metrics.EventsReceived.Add(float64(len(raw)))

	var norm domain.NormalizeResult
	err = p.timed(StageNormalize, func() (err error) {
		norm, err = domain.NormalizeEvents(raw, logger)
		return err
	})
	c.Normalized = len(norm.Events)
	c.Skipped = norm.Skipped
	for reason, n := range norm.SkipReasons {
		p.metrics.EventsSkipped.WithLabelValues(reason).Add(float64(n))
	}
	if err != nil {
		return nil, fail(StageNormalize, err)
	}
	out.Events = norm.Events
	out.SkipReasons = norm.SkipReasons
	logger.Info("events normalized", "received", c.Events, "normalized", c.Normalized, "skipped", c.Skipped)

	var days []domain.DailyAggregate
	_ = p.timed(StageAggregate, func() error {
		days = domain.AggregateDaily(norm.Events)
		return nil
	})
	c.Days = len(days)
	p.metrics.DaysAggregated.Add(float64(len(days)))

	first, last := days[0].Date, days[len(days)-1].Date
	var weather []domain.WeatherRecord
	err = p.timed(StageReadWeather, func() (err error) {
		weather, err = p.weather.ReadWeather(ctx, first, last)
		return err
	})
	if err != nil {
		return nil, fail(StageReadWeather, err)
	}
	c.Weather = len(weather)

	var joined domain.JoinResult
	err = p.timed(StageJoin, func() (err error) {
		joined, err = domain.JoinDaily(days, weather)
		return err
	})
	c.Joined = len(joined.Records)
	c.ActivityOnly = joined.ActivityOnly
	c.WeatherOnly = joined.WeatherOnly
	c.DuplicateWeather = joined.DuplicateWeather
	c.Incomplete = joined.Incomplete
	p.metrics.DaysDropped.WithLabelValues("activity").Add(float64(joined.ActivityOnly))
	p.metrics.DaysDropped.WithLabelValues("weather").Add(float64(joined.WeatherOnly))
	p.metrics.DaysDropped.WithLabelValues("duplicate").Add(float64(joined.DuplicateWeather))
	if err != nil {
		return nil, fail(StageJoin, err)
	}
	p.metrics.DaysJoined.Add(float64(c.Joined))
	logger.Info("datasets joined",
		"activity_days", c.Days,
		"weather_days", c.Weather,
		"joined", c.Joined,
		"activity_only", c.ActivityOnly,
		"weather_only", c.WeatherOnly,
	)
	if joined.DuplicateWeather > 0 {
		logger.Warn("duplicate weather dates, kept first occurrence", "duplicates", joined.DuplicateWeather)
	}
	if joined.Incomplete > 0 {
		logger.Warn("joined days missing temperature or precipitation", "incomplete", joined.Incomplete)
	}

	_ = p.timed(StageDerive, func() error {
		out.Merged = domain.DeriveFeatures(joined.Records)
		out.Corr = domain.Correlate(out.Merged)
		out.YearMonth = domain.YearMonthMeans(out.Merged)
		out.TempDay = domain.TempDayMeans(out.Merged)
		out.Hourly = domain.HourlyProfile(out.Events)
		return nil
	})

	_ = p.timed(StageSummarize, func() error {
		out.Report = domain.Summarize(out.Merged, out.Corr)
		return nil
	})
	out.GeneratedAt = out.Report.GeneratedAt
	c.Degenerate = out.Report.Degenerate
	p.metrics.DegenerateStatistics.Add(float64(c.Degenerate))
	if c.Degenerate > 0 {
		logger.Info("statistics reported as n/a", "count", c.Degenerate, "degenerate_cells", out.Corr.Degenerate)
	}

	err = p.timed(StageWrite, func() error {
		for _, s := range p.sinks {
			if err := s.Write(ctx, out); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fail(StageWrite, err)
	}
	return out, nil
}

func (p *Pipeline) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return err
}
