package domain

import "fmt"

// EmptyInputError reports that normalization produced no usable events.
type EmptyInputError struct {
	Received int
	Skipped  int
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no usable events: received %d, skipped %d", e.Received, e.Skipped)
}

// NoOverlapError reports that the daily aggregates and the weather table
// share no dates.
type NoOverlapError struct {
	Aggregates int
	Weather    int
}

func (e *NoOverlapError) Error() string {
	return fmt.Sprintf("no overlapping dates: %d activity days, %d weather days", e.Aggregates, e.Weather)
}

// Skip reasons recorded by NormalizeEvents.
const (
	SkipMissingTimestamp = "missing_timestamp"
	SkipBadTimestamp     = "bad_timestamp"
	SkipBadMagnitude     = "bad_magnitude"
	SkipEndBeforeStart   = "end_before_start"
)
