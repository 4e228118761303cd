// Package domain reconciles step-count activity with daily weather.
//
// # Data Sources
//
// Activity comes from an Apple Health export: each HKQuantityTypeIdentifierStepCount
// record carries a start and end timestamp, a step count and the name of the
// device that measured it. Records are irregular (a few seconds to several
// minutes each) and overlap freely across sources.
//
// Weather comes from a daily archive (Meteostat or Open-Meteo): one row per
// calendar day for a single coordinate, gaps filled by the previous known
// value and then by the next known value (see [FillGaps]).
//
// # Conventions
//
// Timestamp format:
//
//	"YYYY-MM-DD HH:MM:SS ±HHMM"  →  e.g. "2024-01-01 08:15:00 +0300"
//	The calendar day of an event is taken in its own offset, never in UTC,
//	so an 00:30 +0300 walk counts for the local day.
//
// Dates:
//
//	Calendar days are represented as UTC midnight [time.Time] values (see
//	[DateOf]). Day-of-week and month names are derived from that value.
//
// Absent values:
//
//	Every weather numeric is a *float64. nil means absent and is never read as
//	zero: absent precipitation yields no weather condition, an undefined
//	correlation is nil and prints as "n/a".
//
// Binning:
//
//	Bins are right-closed ordered (upper bound, label) tables:
//
//	  Precipitation (mm): ≤0 Clear | ≤1 Light Rain | >1 Heavy Rain
//	  Mean temp (°C):     ≤5 Cold  | ≤15 Mild | ≤25 Warm | >25 Hot
//
// # Stages
//
// [NormalizeEvents] → [AggregateDaily] → [JoinDaily] → [DeriveFeatures] and
// [Correlate] → [Summarize]. Each stage returns a new value and leaves its
// input untouched. Dataset-level emptiness is reported with
// [*EmptyInputError] and [*NoOverlapError].
package domain
