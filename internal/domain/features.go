package domain

import (
	"math"
	"sort"
)

// Weather condition labels.
const (
	ConditionClear     = "Clear"
	ConditionLightRain = "Light Rain"
	ConditionHeavyRain = "Heavy Rain"
)

// Temperature range labels.
const (
	TempCold = "Cold"
	TempMild = "Mild"
	TempWarm = "Warm"
	TempHot  = "Hot"
)

// RollingWindow is the number of date-sorted samples in the trailing mean.
const RollingWindow = 30

// Bin is one right-closed interval of a binning table: values up to and
// including Upper fall into Label.
type Bin struct {
	Upper float64
	Label string
}

// BinTable is evaluated in order; the last bin must have Upper = +Inf.
type BinTable []Bin

// PrecipitationBins classifies daily precipitation (mm).
var PrecipitationBins = BinTable{
	{Upper: 0, Label: ConditionClear},
	{Upper: 1, Label: ConditionLightRain},
	{Upper: math.Inf(1), Label: ConditionHeavyRain},
}

// TemperatureBins classifies mean daily temperature (°C).
var TemperatureBins = BinTable{
	{Upper: 5, Label: TempCold},
	{Upper: 15, Label: TempMild},
	{Upper: 25, Label: TempWarm},
	{Upper: math.Inf(1), Label: TempHot},
}

// Classify returns the label of the first bin whose upper bound is >= v.
// Absent and NaN values return "".
func (t BinTable) Classify(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	for _, b := range t {
		if *v <= b.Upper {
			return b.Label
		}
	}
	return ""
}

// Labels returns the labels in bin order.
func (t BinTable) Labels() []string {
	out := make([]string, len(t))
	for i, b := range t {
		out[i] = b.Label
	}
	return out
}

// DeriveFeatures returns a date-sorted copy of records with the categorical,
// calendar and rolling-mean columns filled in. Base columns are untouched.
func DeriveFeatures(records []MergedRecord) []MergedRecord {
	out := make([]MergedRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	var windowSum int64
	for i := range out {
		r := &out[i]
		r.WeatherCondition = PrecipitationBins.Classify(r.Weather.Precipitation)
		r.TempRange = TemperatureBins.Classify(r.Weather.TempMean)
		r.Year = r.Date.Year()
		r.MonthNum = int(r.Date.Month())

		windowSum += r.TotalMagnitude
		if i >= RollingWindow {
			windowSum -= out[i-RollingWindow].TotalMagnitude
		}
		if i >= RollingWindow-1 {
			r.Rolling30 = Float(float64(windowSum) / RollingWindow)
		}
	}
	return out
}
