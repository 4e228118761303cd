package domain

import (
	"fmt"
	"sort"
	"time"
)

// ReportBanner opens every rendered report.
const ReportBanner = "=== WALKING PATTERNS ANALYSIS ==="

// Section headers, in the order they appear in a report.
const (
	SectionOverall         = "1. OVERALL STATISTICS"
	SectionTemperature     = "2. TEMPERATURE IMPACT"
	SectionDayOfWeek       = "3. DAY OF WEEK PATTERNS"
	SectionWeather         = "4. WEATHER IMPACT"
	SectionTopDays         = "5. TOP WALKING DAYS"
	SectionSeasonal        = "6. SEASONAL PATTERNS"
	SectionCorrelations    = "7. WEATHER CORRELATIONS"
	SectionRecommendations = "8. KEY FINDINGS AND RECOMMENDATIONS"
)

// SectionTitles lists the section headers in report order.
var SectionTitles = []string{
	SectionOverall,
	SectionTemperature,
	SectionDayOfWeek,
	SectionWeather,
	SectionTopDays,
	SectionSeasonal,
	SectionCorrelations,
	SectionRecommendations,
}

// TopDaysLimit is the number of rows listed under top walking days.
const TopDaysLimit = 5

// Section is a titled block of report lines.
type Section struct {
	Title string   `json:"title" yaml:"title"`
	Lines []string `json:"lines" yaml:"lines"`
}

// InsightReport is the ordered set of report sections. Degenerate counts the
// statistics reported as n/a.
type InsightReport struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Sections    []Section `json:"sections" yaml:"sections"`
	Degenerate  int       `json:"degenerate" yaml:"degenerate"`
}

// Summarize builds the eight-section report from feature-derived records and
// their correlation matrix. records must be non-empty.
func Summarize(records []MergedRecord, corr CorrMatrix) InsightReport {
	rep := InsightReport{GeneratedAt: reportClock.Now()}

	tempStats := MeanBy(records, func(r MergedRecord) string { return r.TempRange }, TemperatureBins.Labels())
	dayStats := RankDescending(MeanBy(records, func(r MergedRecord) string { return r.DayOfWeek }, nil))
	weatherStats := RankDescending(MeanBy(records, func(r MergedRecord) string { return r.WeatherCondition }, nil))
	monthStats := RankDescending(MeanBy(records, func(r MergedRecord) string { return r.MonthName }, nil))

	rep.Sections = append(rep.Sections,
		overallSection(records),
		rep.temperatureSection(tempStats),
		rankedSection(SectionDayOfWeek, "Average steps by day of week:", dayStats),
		rankedSection(SectionWeather, "Average steps by weather condition:", weatherStats),
		topDaysSection(records),
		rankedSection(SectionSeasonal, "Average steps by month:", monthStats),
		rep.correlationSection(corr),
		recommendationSection(tempStats, dayStats, weatherStats),
	)
	return rep
}

func overallSection(records []MergedRecord) Section {
	total := int64(0)
	lo, hi := records[0].TotalMagnitude, records[0].TotalMagnitude
	for _, r := range records {
		total += r.TotalMagnitude
		lo = min(lo, r.TotalMagnitude)
		hi = max(hi, r.TotalMagnitude)
	}
	avg := float64(total) / float64(len(records))
	return Section{
		Title: SectionOverall,
		Lines: []string{
			"Total days analyzed: " + formatInt(int64(len(records))),
			"Average daily steps: " + formatWhole(avg),
			"Highest step count: " + formatInt(hi) + " steps",
			"Lowest step count: " + formatInt(lo) + " steps",
		},
	}
}

func (rep *InsightReport) temperatureSection(stats []GroupStat) Section {
	lines := []string{"Average steps by temperature range:"}
	for _, s := range stats {
		if s.Mean == nil {
			rep.Degenerate++
			lines = append(lines, fmt.Sprintf("%s: n/a (%s days)", s.Key, formatInt(int64(s.Count))))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s steps (%s days)", s.Key, formatWhole(*s.Mean), formatInt(int64(s.Count))))
	}
	return Section{Title: SectionTemperature, Lines: lines}
}

func rankedSection(title, intro string, stats []GroupStat) Section {
	lines := []string{intro}
	for _, s := range stats {
		if s.Mean == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s steps", s.Key, formatWhole(*s.Mean)))
	}
	return Section{Title: title, Lines: lines}
}

func topDaysSection(records []MergedRecord) Section {
	sorted := make([]MergedRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalMagnitude != sorted[j].TotalMagnitude {
			return sorted[i].TotalMagnitude > sorted[j].TotalMagnitude
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	if len(sorted) > TopDaysLimit {
		sorted = sorted[:TopDaysLimit]
	}

	lines := []string{fmt.Sprintf("Top %d days with highest step counts:", TopDaysLimit)}
	for _, r := range sorted {
		lines = append(lines, fmt.Sprintf("Date: %s, Steps: %s, Temperature: %s, Weather: %s",
			r.Date.Format(time.DateOnly),
			formatInt(r.TotalMagnitude),
			formatTemp(r.Weather.TempMean),
			orNA(r.WeatherCondition),
		))
	}
	return Section{Title: SectionTopDays, Lines: lines}
}

func (rep *InsightReport) correlationSection(corr CorrMatrix) Section {
	lines := []string{"Correlation with steps:"}
	for _, col := range corr.Columns {
		if col == ColTotalMagnitude {
			continue
		}
		r := corr.Get(ColTotalMagnitude, col)
		if r == nil {
			rep.Degenerate++
		}
		lines = append(lines, fmt.Sprintf("%s: %s", col, formatCorr(r)))
	}
	return Section{Title: SectionCorrelations, Lines: lines}
}

func recommendationSection(temp, day, weather []GroupStat) Section {
	label := func(stats []GroupStat) string {
		if best, ok := Best(stats); ok {
			return best.Key
		}
		return "n/a"
	}
	return Section{
		Title: SectionRecommendations,
		Lines: []string{
			"- Best conditions for walking:",
			"  Temperature range: " + label(temp),
			"  Day of week: " + label(day),
			"  Weather: " + label(weather),
		},
	}
}
