package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelate_ConstantAndAbsentColumns(t *testing.T) {
	rows := []struct {
		steps                       int64
		mean, tmin, tmax, wind, hpa float64
	}{
		{100, 10, 5, 1, 3, 1013},
		{200, 20, 4, 3, 3, 1013},
		{300, 30, 3, 2, 3, 1013},
	}
	var records []MergedRecord
	for i, r := range rows {
		d := day(2024, 1, i+1)
		records = append(records, MergedRecord{
			DailyAggregate: agg(d, r.steps),
			Weather: WeatherRecord{
				Date:      d,
				TempMean:  Float(r.mean),
				TempMin:   Float(r.tmin),
				TempMax:   Float(r.tmax),
				WindSpeed: Float(r.wind),
				Pressure:  Float(r.hpa),
			},
		})
	}

	m := Correlate(records)

	assert.Equal(t, CorrelationColumns, m.Columns)
	require.NotNil(t, m.Get(ColTotalMagnitude, ColTempMean))
	assert.Equal(t, 1.0, *m.Get(ColTotalMagnitude, ColTempMean))
	assert.Equal(t, -1.0, *m.Get(ColTotalMagnitude, ColTempMin))
	assert.InDelta(t, 0.5, *m.Get(ColTotalMagnitude, ColTempMax), 1e-12)

	assert.Nil(t, m.Get(ColWindSpeed, ColPressure))
	assert.Nil(t, m.Get(ColTotalMagnitude, ColWindSpeed))
	assert.Nil(t, m.Get(ColTotalMagnitude, ColPressure))
	assert.Nil(t, m.Get(ColTotalMagnitude, ColPrecipitation))
	assert.Nil(t, m.Get(ColWindSpeed, ColWindSpeed))

	// 4 usable columns give 10 defined cells of the 28 on and above the diagonal.
	assert.Equal(t, 18, m.Degenerate)
}

func TestCorrelate_SymmetricWithUnitDiagonal(t *testing.T) {
	records := mergedSeries(10)
	for i := range records {
		records[i].Weather.TempMean = Float(float64(i*i) - 3)
		records[i].Weather.Precipitation = Float(float64(i % 3))
	}

	m := Correlate(records)

	for i, a := range m.Columns {
		for j, b := range m.Columns {
			assert.Equal(t, m.Values[i][j], m.Values[j][i], "%s/%s", a, b)
			if v := m.Get(a, b); v != nil {
				assert.GreaterOrEqual(t, *v, -1.0)
				assert.LessOrEqual(t, *v, 1.0)
			}
		}
	}
	require.NotNil(t, m.Get(ColTempMean, ColTempMean))
	assert.InDelta(t, 1.0, *m.Get(ColTempMean, ColTempMean), 1e-12)
}

func TestCorrelate_PairwiseComplete(t *testing.T) {
	temps := []*float64{Float(10), nil, Float(30), Float(40)}
	var records []MergedRecord
	for i, tm := range temps {
		d := day(2024, 1, i+1)
		records = append(records, MergedRecord{
			DailyAggregate: agg(d, int64(100*(i+1))),
			Weather:        WeatherRecord{Date: d, TempMean: tm},
		})
	}

	r := Correlate(records).Get(ColTotalMagnitude, ColTempMean)
	require.NotNil(t, r)
	assert.InDelta(t, 1.0, *r, 1e-12)
}

func TestCorrelate_SingleRowIsDegenerate(t *testing.T) {
	m := Correlate(mergedSeries(1))
	for i := range m.Columns {
		for j := range m.Columns {
			assert.Nil(t, m.Values[i][j])
		}
	}
	assert.Equal(t, 28, m.Degenerate)
}

func TestCorrMatrix_GetUnknownColumn(t *testing.T) {
	m := Correlate(mergedSeries(5))
	assert.Nil(t, m.Get(ColTotalMagnitude, "humidity"))
}
