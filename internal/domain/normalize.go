package domain

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Accepted timestamp layouts. The first is what the health export and the
// events CSV carry; the second drops the space before the offset.
var timestampLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05-0700",
}

// TimestampLayout is the layout used when writing timestamps back out.
const TimestampLayout = "2006-01-02 15:04:05 -0700"

// NormalizeResult holds the events that survived normalization and the skip
// counts by reason.
type NormalizeResult struct {
	Events      []NormalizedEvent
	Received    int
	Skipped     int
	SkipReasons map[string]int
}

// NormalizeEvents parses raw records into typed events with duration and rate.
// Malformed records are logged and skipped. If nothing survives, an
// *EmptyInputError is returned.
func NormalizeEvents(records []RawEventRecord, logger *slog.Logger) (NormalizeResult, error) {
	res := NormalizeResult{
		Events:      make([]NormalizedEvent, 0, len(records)),
		Received:    len(records),
		SkipReasons: make(map[string]int),
	}

	for i, rec := range records {
		ev, reason := normalizeEvent(rec)
		if reason != "" {
			logger.Warn("skipping event record",
				"index", i,
				"reason", reason,
				"start", rec.Start,
				"end", rec.End,
				"source", rec.Source,
			)
			res.Skipped++
			res.SkipReasons[reason]++
			continue
		}
		res.Events = append(res.Events, ev)
	}

	if len(res.Events) == 0 {
		return res, &EmptyInputError{Received: res.Received, Skipped: res.Skipped}
	}
	return res, nil
}

// normalizeEvent returns the parsed event, or a non-empty skip reason.
func normalizeEvent(rec RawEventRecord) (NormalizedEvent, string) {
	if strings.TrimSpace(rec.Start) == "" || strings.TrimSpace(rec.End) == "" {
		return NormalizedEvent{}, SkipMissingTimestamp
	}
	start, ok := parseTimestamp(rec.Start)
	if !ok {
		return NormalizedEvent{}, SkipBadTimestamp
	}
	end, ok := parseTimestamp(rec.End)
	if !ok {
		return NormalizedEvent{}, SkipBadTimestamp
	}
	if end.Before(start) {
		return NormalizedEvent{}, SkipEndBeforeStart
	}

	magnitude, err := strconv.ParseInt(strings.TrimSpace(rec.Magnitude), 10, 64)
	if err != nil || magnitude < 0 {
		return NormalizedEvent{}, SkipBadMagnitude
	}

	return NewNormalizedEvent(start, end, magnitude, rec.Source), ""
}

// NewNormalizedEvent builds an event and derives its duration and rate.
// The rate is 0 for zero-length intervals.
func NewNormalizedEvent(start, end time.Time, magnitude int64, source string) NormalizedEvent {
	duration := end.Sub(start).Minutes()
	var rate float64
	if duration > 0 {
		rate = float64(magnitude) / duration
	}
	return NormalizedEvent{
		Start:           start,
		End:             end,
		Magnitude:       magnitude,
		Source:          strings.TrimSpace(source),
		DurationMinutes: duration,
		RatePerMinute:   rate,
	}
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
