package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
)

// EventColumns is the header written for normalized events. It matches the
// extractor output, so an events file can be fed back in as input.
var EventColumns = []string{"start_date", "end_date", "steps", "duration_minutes", "steps_per_minute", "source"}

// EventReader reads raw activity records from a CSV file.
// It implements pipeline.EventSource.
type EventReader struct {
	path string
}

// NewEventReader creates a reader for the CSV at path.
func NewEventReader(path string) *EventReader {
	return &EventReader{path: path}
}

// ReadEvents opens the file and decodes every row.
func (r *EventReader) ReadEvents(_ context.Context) ([]domain.RawEventRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open events: %w", err)
	}
	defer f.Close()

	records, err := DecodeEvents(f)
	if err != nil {
		return nil, fmt.Errorf("events %s: %w", r.path, err)
	}
	return records, nil
}

// DecodeEvents reads raw records from CSV. The header must name a start, end
// and magnitude column (start_date/start_timestamp, end_date/end_timestamp,
// steps/magnitude/value); source is optional. Cells are passed through
// unparsed.
func DecodeEvents(in io.Reader) ([]domain.RawEventRecord, error) {
	r := newReader(in)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	start, err := h.require("start_date", "start_timestamp", "startdate")
	if err != nil {
		return nil, err
	}
	end, err := h.require("end_date", "end_timestamp", "enddate")
	if err != nil {
		return nil, err
	}
	magnitude, err := h.require("steps", "magnitude", "value")
	if err != nil {
		return nil, err
	}
	source := h.find("source", "sourcename")

	var out []domain.RawEventRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, domain.RawEventRecord{
			Start:     cell(row, start),
			End:       cell(row, end),
			Magnitude: cell(row, magnitude),
			Source:    cell(row, source),
		})
	}
}

// WriteEvents writes normalized events sorted by start time.
func WriteEvents(path string, events []domain.NormalizedEvent) error {
	sorted := make([]domain.NormalizedEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write(EventColumns); err != nil {
			return err
		}
		for _, ev := range sorted {
			if err := w.Write([]string{
				ev.Start.Format(domain.TimestampLayout),
				ev.End.Format(domain.TimestampLayout),
				fmt.Sprint(ev.Magnitude),
				formatFloat(ev.DurationMinutes),
				formatFloat(ev.RatePerMinute),
				ev.Source,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
