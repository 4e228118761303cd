package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "activity_insights"

// Metrics holds the Prometheus counters, histograms, and gauges for the insights pipeline.
type Metrics struct {
	EventsReceived prometheus.Counter
	EventsSkipped  *prometheus.CounterVec // labels: reason
	DaysAggregated prometheus.Counter
	DaysJoined     prometheus.Counter
	DaysDropped    *prometheus.CounterVec // labels: side={activity,weather,duplicate}

	DegenerateStatistics prometheus.Counter

	StageDuration   *prometheus.HistogramVec // labels: stage
	Runs            *prometheus.CounterVec   // labels: outcome={success,error}
	PipelineRunning prometheus.Gauge

	// Weather API metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram

	RecordsPublished prometheus.Counter
}

var stageBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10}

func newMetrics() *Metrics {
	return &Metrics{
		EventsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Total raw activity records handed to the normalizer.",
		}),
		EventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_skipped_total",
			Help:      "Raw activity records dropped during normalization, by reason.",
		}, []string{"reason"}),
		DaysAggregated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_aggregated_total",
			Help:      "Daily aggregates produced.",
		}),
		DaysJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_joined_total",
			Help:      "Days present in both activity and weather data.",
		}),
		DaysDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_dropped_total",
			Help:      "Days dropped by the join, by side.",
		}, []string{"side"}),
		DegenerateStatistics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_statistics_total",
			Help:      "Statistics reported as n/a (empty group or zero variance).",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   stageBuckets,
		}, []string{"stage"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_requests_total",
			Help:      "Weather archive API requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather chunk cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "Weather archive API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Merged daily records written to the Kafka sink.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.EventsReceived,
		m.EventsSkipped,
		m.DaysAggregated,
		m.DaysJoined,
		m.DaysDropped,
		m.DegenerateStatistics,
		m.StageDuration,
		m.Runs,
		m.PipelineRunning,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.RecordsPublished,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
