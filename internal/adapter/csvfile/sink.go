package csvfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/activity-weather-insights/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// Artifact file names written under the output directory.
const (
	MergedFile      = "merged_daily.csv"
	EventsFile      = "events_normalized.csv"
	CorrelationFile = "correlation_matrix.csv"
	YearMonthFile   = "year_month_means.csv"
	TempDayFile     = "temp_day_means.csv"
	HourlyFile      = "hourly_profile.csv"
	ReportFile      = "detailed_insights.txt"
	ManifestFile    = "manifest.yaml"
)

// Manifest describes one run's artifacts.
type Manifest struct {
	RunID       string          `yaml:"run_id"`
	GeneratedAt time.Time       `yaml:"generated_at"`
	Counts      pipeline.Counts `yaml:"counts"`
	SkipReasons map[string]int  `yaml:"skip_reasons,omitempty"`
	Files       []string        `yaml:"files"`
}

// OutputSink writes run artifacts to a directory.
// It implements pipeline.Sink.
type OutputSink struct {
	dir    string
	logger *slog.Logger
}

// NewOutputSink creates a sink writing into dir, which is created if needed.
func NewOutputSink(dir string, logger *slog.Logger) *OutputSink {
	return &OutputSink{dir: dir, logger: logger}
}

// Write emits the chart tables, the report and the manifest, in that order.
func (s *OutputSink) Write(_ context.Context, out *pipeline.Output) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	steps := []struct {
		name  string
		write func(path string) error
	}{
		{MergedFile, func(p string) error { return WriteMerged(p, out.Merged) }},
		{EventsFile, func(p string) error { return WriteEvents(p, out.Events) }},
		{CorrelationFile, func(p string) error { return WriteCorrelation(p, out.Corr) }},
		{YearMonthFile, func(p string) error { return WriteCross(p, "year", "month", out.YearMonth) }},
		{TempDayFile, func(p string) error { return WriteCross(p, "temp_range", "day_of_week", out.TempDay) }},
		{HourlyFile, func(p string) error { return WriteHourly(p, out.Hourly) }},
		{ReportFile, func(p string) error { return WriteReport(p, out) }},
	}

	files := make([]string, 0, len(steps))
	for _, st := range steps {
		if err := st.write(filepath.Join(s.dir, st.name)); err != nil {
			return err
		}
		files = append(files, st.name)
	}

	if err := WriteManifest(filepath.Join(s.dir, ManifestFile), Manifest{
		RunID:       out.RunID,
		GeneratedAt: out.GeneratedAt,
		Counts:      out.Counts,
		SkipReasons: out.SkipReasons,
		Files:       files,
	}); err != nil {
		return err
	}

	s.logger.Info("artifacts written", "dir", s.dir, "files", len(files)+1)
	return nil
}

// WriteReport renders the insight report to path.
func WriteReport(path string, out *pipeline.Output) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := out.Report.RenderTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteManifest writes m as YAML.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode %s: %w", path, err)
	}
	return m, nil
}
