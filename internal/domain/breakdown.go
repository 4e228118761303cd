package domain

import (
	"sort"
	"strconv"
	"time"
)

// Weekdays lists day names Monday first, the order used for day columns.
var Weekdays = []string{
	time.Monday.String(), time.Tuesday.String(), time.Wednesday.String(),
	time.Thursday.String(), time.Friday.String(), time.Saturday.String(),
	time.Sunday.String(),
}

// GroupStat is the mean daily magnitude of one group. Mean is nil for an
// empty group.
type GroupStat struct {
	Key   string   `json:"key"`
	Mean  *float64 `json:"mean,omitempty"`
	Count int      `json:"count"`
}

// CrossCell is one populated cell of a two-key breakdown.
type CrossCell struct {
	Row   string  `json:"row"`
	Col   string  `json:"col"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// HourStat is the mean event magnitude for events starting in an hour of day.
type HourStat struct {
	Hour  int     `json:"hour"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

type meanAcc struct {
	sum   float64
	count int
}

func (a *meanAcc) add(v float64) {
	a.sum += v
	a.count++
}

// MeanBy groups records by key and returns the mean total magnitude per group.
// When order is non-nil the result follows it and includes empty groups;
// otherwise groups come back sorted by key. Records with an empty key are
// left out.
func MeanBy(records []MergedRecord, key func(MergedRecord) string, order []string) []GroupStat {
	accs := make(map[string]*meanAcc)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		a, ok := accs[k]
		if !ok {
			a = &meanAcc{}
			accs[k] = a
		}
		a.add(float64(r.TotalMagnitude))
	}

	keys := order
	if keys == nil {
		keys = make([]string, 0, len(accs))
		for k := range accs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	out := make([]GroupStat, 0, len(keys))
	for _, k := range keys {
		gs := GroupStat{Key: k}
		if a, ok := accs[k]; ok && a.count > 0 {
			gs.Mean = Float(a.sum / float64(a.count))
			gs.Count = a.count
		}
		out = append(out, gs)
	}
	return out
}

// RankDescending returns stats ordered by mean, highest first. Ties are broken
// by key; empty groups sort last.
func RankDescending(stats []GroupStat) []GroupStat {
	out := make([]GroupStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Mean == nil && b.Mean == nil:
			return a.Key < b.Key
		case a.Mean == nil:
			return false
		case b.Mean == nil:
			return true
		case *a.Mean != *b.Mean:
			return *a.Mean > *b.Mean
		default:
			return a.Key < b.Key
		}
	})
	return out
}

// Best returns the first group in order with the highest mean, or false when
// every group is empty.
func Best(stats []GroupStat) (GroupStat, bool) {
	var best GroupStat
	found := false
	for _, s := range stats {
		if s.Mean == nil {
			continue
		}
		if !found || *s.Mean > *best.Mean {
			best = s
			found = true
		}
	}
	return best, found
}

// CrossMeans returns the mean total magnitude for every populated (row, col)
// pair. Rows follow rowOrder when given, otherwise sort by key; cols follow
// colOrder the same way.
func CrossMeans(records []MergedRecord, row, col func(MergedRecord) string, rowOrder, colOrder []string) []CrossCell {
	type cellKey struct{ row, col string }
	accs := make(map[cellKey]*meanAcc)
	rowSeen := make(map[string]bool)
	colSeen := make(map[string]bool)
	for _, r := range records {
		k := cellKey{row(r), col(r)}
		if k.row == "" || k.col == "" {
			continue
		}
		a, ok := accs[k]
		if !ok {
			a = &meanAcc{}
			accs[k] = a
		}
		a.add(float64(r.TotalMagnitude))
		rowSeen[k.row] = true
		colSeen[k.col] = true
	}

	rows := orderedKeys(rowSeen, rowOrder)
	cols := orderedKeys(colSeen, colOrder)

	var out []CrossCell
	for _, rk := range rows {
		for _, ck := range cols {
			a, ok := accs[cellKey{rk, ck}]
			if !ok {
				continue
			}
			out = append(out, CrossCell{Row: rk, Col: ck, Mean: a.sum / float64(a.count), Count: a.count})
		}
	}
	return out
}

func orderedKeys(seen map[string]bool, order []string) []string {
	if order != nil {
		return order
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// YearMonthMeans is the year x month breakdown of mean daily magnitude.
func YearMonthMeans(records []MergedRecord) []CrossCell {
	months := make([]string, 12)
	for m := 1; m <= 12; m++ {
		months[m-1] = strconv.Itoa(m)
	}
	return CrossMeans(records,
		func(r MergedRecord) string { return strconv.Itoa(r.Year) },
		func(r MergedRecord) string { return strconv.Itoa(r.MonthNum) },
		nil, months,
	)
}

// TempDayMeans is the temperature range x day of week breakdown.
func TempDayMeans(records []MergedRecord) []CrossCell {
	return CrossMeans(records,
		func(r MergedRecord) string { return r.TempRange },
		func(r MergedRecord) string { return r.DayOfWeek },
		TemperatureBins.Labels(), Weekdays,
	)
}

// HourlyProfile returns the mean event magnitude by hour of day of the event
// start, in the event's own zone. Hours with no events are omitted.
func HourlyProfile(events []NormalizedEvent) []HourStat {
	var accs [24]meanAcc
	for _, ev := range events {
		accs[ev.Start.Hour()].add(float64(ev.Magnitude))
	}
	var out []HourStat
	for h, a := range accs {
		if a.count == 0 {
			continue
		}
		out = append(out, HourStat{Hour: h, Mean: a.sum / float64(a.count), Count: a.count})
	}
	return out
}
