// Package healthxml streams activity records out of an Apple Health export.
package healthxml

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/activity-weather-insights/internal/domain"
)

// StepCountType is the record type of step samples.
const StepCountType = "HKQuantityTypeIdentifierStepCount"

// Extractor reads Record elements of one type from an export.xml file.
// It implements pipeline.EventSource.
type Extractor struct {
	path       string
	recordType string
	logger     *slog.Logger
}

// NewExtractor creates an extractor for recordType; an empty type means step counts.
func NewExtractor(path, recordType string, logger *slog.Logger) *Extractor {
	if recordType == "" {
		recordType = StepCountType
	}
	return &Extractor{path: path, recordType: recordType, logger: logger}
}

// ReadEvents opens the export and decodes matching records.
func (e *Extractor) ReadEvents(ctx context.Context) ([]domain.RawEventRecord, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("open health export: %w", err)
	}
	defer f.Close()

	records, err := Decode(ctx, f, e.recordType)
	if err != nil {
		return nil, fmt.Errorf("health export %s: %w", e.path, err)
	}
	e.logger.Info("health export read", "path", e.path, "type", e.recordType, "records", len(records))
	return records, nil
}

type record struct {
	Type       string `xml:"type,attr"`
	SourceName string `xml:"sourceName,attr"`
	StartDate  string `xml:"startDate,attr"`
	EndDate    string `xml:"endDate,attr"`
	Value      string `xml:"value,attr"`
}

// Decode streams r and returns a RawEventRecord for every Record element of
// recordType, at any depth. Attributes are passed through unparsed.
func Decode(ctx context.Context, r io.Reader, recordType string) ([]domain.RawEventRecord, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var out []domain.RawEventRecord
	for n := 0; ; n++ {
		if n%10000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Record" || attr(start, "type") != recordType {
			continue
		}

		var rec record
		if err := dec.DecodeElement(&rec, &start); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, domain.RawEventRecord{
			Start:     rec.StartDate,
			End:       rec.EndDate,
			Magnitude: rec.Value,
			Source:    rec.SourceName,
		})
	}
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
