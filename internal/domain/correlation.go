package domain

import "math"

// Correlation column names.
const (
	ColTotalMagnitude = "total_magnitude"
	ColTempMean       = "temp_mean"
	ColPrecipitation  = "precipitation"
	ColWindSpeed      = "wind_speed"
	ColPressure       = "pressure"
	ColTempMin        = "temp_min"
	ColTempMax        = "temp_max"
)

// CorrelationColumns is the column order of the correlation matrix.
var CorrelationColumns = []string{
	ColTotalMagnitude,
	ColTempMean,
	ColPrecipitation,
	ColWindSpeed,
	ColPressure,
	ColTempMin,
	ColTempMax,
}

var columnValue = map[string]func(MergedRecord) *float64{
	ColTotalMagnitude: func(r MergedRecord) *float64 { return Float(float64(r.TotalMagnitude)) },
	ColTempMean:       func(r MergedRecord) *float64 { return r.Weather.TempMean },
	ColPrecipitation:  func(r MergedRecord) *float64 { return r.Weather.Precipitation },
	ColWindSpeed:      func(r MergedRecord) *float64 { return r.Weather.WindSpeed },
	ColPressure:       func(r MergedRecord) *float64 { return r.Weather.Pressure },
	ColTempMin:        func(r MergedRecord) *float64 { return r.Weather.TempMin },
	ColTempMax:        func(r MergedRecord) *float64 { return r.Weather.TempMax },
}

// CorrMatrix is a symmetric Pearson correlation matrix. A nil cell is a
// degenerate pair: fewer than two complete observations or a constant column.
type CorrMatrix struct {
	Columns    []string
	Values     [][]*float64
	Degenerate int // count of nil cells above and on the diagonal
}

// Get returns the correlation between two named columns, or nil if either
// name is unknown or the pair is degenerate.
func (m CorrMatrix) Get(a, b string) *float64 {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return nil
	}
	return m.Values[i][j]
}

func (m CorrMatrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Correlate computes the pairwise Pearson matrix over CorrelationColumns,
// using only rows where both values of a pair are present.
func Correlate(records []MergedRecord) CorrMatrix {
	cols := CorrelationColumns
	series := make([][]*float64, len(cols))
	for c, name := range cols {
		get := columnValue[name]
		series[c] = make([]*float64, len(records))
		for i, r := range records {
			series[c][i] = get(r)
		}
	}

	m := CorrMatrix{Columns: cols, Values: make([][]*float64, len(cols))}
	for i := range cols {
		m.Values[i] = make([]*float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pearson(series[i], series[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
			if r == nil {
				m.Degenerate++
			}
		}
	}
	return m
}

// pearson returns the correlation of the complete pairs of xs and ys, or nil
// when it is undefined.
func pearson(xs, ys []*float64) *float64 {
	var px, py []float64
	for i := range xs {
		if xs[i] == nil || ys[i] == nil || math.IsNaN(*xs[i]) || math.IsNaN(*ys[i]) {
			continue
		}
		px = append(px, *xs[i])
		py = append(py, *ys[i])
	}
	if len(px) < 2 || constant(px) || constant(py) {
		return nil
	}

	mx, my := mean(px), mean(py)
	var sxy, sxx, syy float64
	for i := range px {
		dx, dy := px[i]-mx, py[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return nil
	}
	r := sxy / math.Sqrt(sxx*syy)
	// Clamp rounding drift so perfectly linear data reports exactly ±1.
	r = math.Max(-1, math.Min(1, r))
	return &r
}

func constant(vs []float64) bool {
	for _, v := range vs[1:] {
		if v != vs[0] {
			return false
		}
	}
	return true
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
