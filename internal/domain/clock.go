package domain

import "github.com/jonboulle/clockwork"

// reportClock stamps InsightReport.GeneratedAt.
var reportClock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the report clock; nil restores wall time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	reportClock = c
}
