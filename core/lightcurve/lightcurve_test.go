package lightcurve

import (
	"math"
	"testing"

	"github.com/huangsam/starspin/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// halfHourSeries returns n samples every 30 minutes with a small sinusoid around 1000.
func halfHourSeries(n int) *schema.TimeSeries {
	ts := &schema.TimeSeries{}
	for i := range n {
		t := float64(i) / 48.0
		ts.Time = append(ts.Time, t)
		ts.Flux = append(ts.Flux, 1000+5*math.Sin(2*math.Pi*t/3))
	}
	return ts
}

func TestPreprocess_DropsNaNAndBins(t *testing.T) {
	raw := halfHourSeries(100)
	raw.Time = append(raw.Time, 1.01)
	raw.Flux = append(raw.Flux, math.NaN())

	cfg := schema.DefaultEngineConfig()
	cfg.BinWidth = 2.0 / 24.0

	out, err := Preprocess(raw, cfg)
	require.NoError(t, err)
	assert.Equal(t, 25, out.Len())

	for i, f := range out.Flux {
		assert.False(t, math.IsNaN(f) || math.IsInf(f, 0), "flux %d must be finite", i)
	}
	for i := 1; i < out.Len(); i++ {
		assert.InDelta(t, 2.0/24.0, out.Time[i]-out.Time[i-1], 1e-9)
	}
	assert.InDelta(t, 1.0/24.0, out.Time[0], 1e-12, "first bin sits at its midpoint")
}

func TestPreprocess_InsufficientAfterCleaning(t *testing.T) {
	raw := halfHourSeries(12)
	for i := range 5 {
		raw.Flux[i] = math.NaN()
	}
	_, err := Preprocess(raw, schema.DefaultEngineConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestPreprocess_InsufficientAfterBinning(t *testing.T) {
	// 40 half-hour samples span 20 hours, i.e. 10 two-hour bins; a 4h width leaves 5.
	cfg := schema.DefaultEngineConfig()
	cfg.BinWidth = 4.0 / 24.0
	_, err := Preprocess(halfHourSeries(40), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientSamples)
	assert.Contains(t, err.Error(), "bins")
}

func TestPreprocess_EmptyAndNil(t *testing.T) {
	_, err := Preprocess(nil, schema.DefaultEngineConfig())
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	_, err = Preprocess(&schema.TimeSeries{}, schema.DefaultEngineConfig())
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestPreprocess_RejectsBadBinWidth(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	cfg.BinWidth = 0
	_, err := Preprocess(halfHourSeries(50), cfg)
	assert.ErrorIs(t, err, ErrMalformedSeries)
}

func TestClean_SortsAndDropsNonFinite(t *testing.T) {
	raw := &schema.TimeSeries{
		Time:    []float64{3, 1, math.Inf(1), 2},
		Flux:    []float64{30, 10, 99, math.NaN()},
		FluxErr: []float64{0.3, math.Inf(1), 0.9, 0.2},
	}
	out, err := Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, out.Time)
	assert.Equal(t, []float64{10, 30}, out.Flux)
	assert.True(t, math.IsNaN(out.FluxErr[0]))
	assert.Equal(t, 0.3, out.FluxErr[1])
}

func TestClean_MismatchedLengths(t *testing.T) {
	_, err := Clean(&schema.TimeSeries{Time: []float64{1, 2}, Flux: []float64{1}})
	assert.ErrorIs(t, err, ErrMalformedSeries)

	_, err = Clean(&schema.TimeSeries{Time: []float64{1, 2}, Flux: []float64{1, 2}, FluxErr: []float64{1}})
	assert.ErrorIs(t, err, ErrMalformedSeries)
}

func TestNormalize(t *testing.T) {
	ts := &schema.TimeSeries{
		Time:    []float64{0, 1, 2},
		Flux:    []float64{2, 4, 6},
		FluxErr: []float64{0.4, 0.4, 0.4},
	}
	out, err := Normalize(ts)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 1.5}, out.Flux)
	assert.Equal(t, []float64{0.1, 0.1, 0.1}, out.FluxErr)
	assert.Equal(t, []float64{2, 4, 6}, ts.Flux, "input is not modified")
}

func TestNormalize_ZeroMedian(t *testing.T) {
	_, err := Normalize(&schema.TimeSeries{Time: []float64{0, 1, 2}, Flux: []float64{-1, 0, 1}})
	assert.ErrorIs(t, err, ErrBadNormalization)
}

func TestBin_ErrorPropagation(t *testing.T) {
	ts := &schema.TimeSeries{
		Time:    []float64{0, 0.1, 0.2, 1.05},
		Flux:    []float64{1, 2, 3, 4},
		FluxErr: []float64{0.3, 0.4, math.NaN(), 0.2},
	}
	out := Bin(ts, 0.5)
	require.Equal(t, 2, out.Len())
	assert.InDelta(t, 0.25, out.Time[0], 1e-12)
	assert.InDelta(t, 1.25, out.Time[1], 1e-12, "empty bin between samples is discarded")
	assert.InDelta(t, 2.0, out.Flux[0], 1e-12)
	assert.InDelta(t, 0.25, out.FluxErr[0], 1e-12)
	assert.InDelta(t, 0.2, out.FluxErr[1], 1e-12)
}

func TestCadence(t *testing.T) {
	ts := &schema.TimeSeries{Time: []float64{0, 1, 2, 2.5, 10}}
	assert.InDelta(t, 1.0, Cadence(ts).Median, 1e-12)
	assert.Equal(t, 0.0, Cadence(&schema.TimeSeries{Time: []float64{1}}).Median)
}

func TestVariability(t *testing.T) {
	ts := &schema.TimeSeries{Time: []float64{0, 1, 2, 3}, Flux: []float64{1, 1, 3, 3}}
	assert.InDelta(t, 1.0, Variability(ts), 1e-12)
	assert.Equal(t, 0.0, Variability(&schema.TimeSeries{}))
}

func TestFold(t *testing.T) {
	ts := &schema.TimeSeries{Time: []float64{10, 11, 12.5, 13}}
	phases := Fold(ts, 2)
	assert.InDeltaSlice(t, []float64{0, 0.5, 0.25, 0.5}, phases, 1e-12)
	for _, p := range phases {
		assert.True(t, p >= 0 && p < 1)
	}
	assert.Equal(t, []float64{0, 0, 0, 0}, Fold(ts, 0))
}

func TestBin_LargeTimesKeepEdgeSamplesTogether(t *testing.T) {
	// 27 days of 30-minute samples at BTJD-like times; every 2-hour bin holds four samples.
	ts := &schema.TimeSeries{}
	for i := range 27 * 48 {
		ts.Time = append(ts.Time, 1800+float64(i)/48)
		ts.Flux = append(ts.Flux, float64(i/4))
	}

	out := Bin(ts, 1.0/12)
	require.Equal(t, 324, out.Len())
	for k, f := range out.Flux {
		assert.Equal(t, float64(k), f, "bin %d mixes samples from neighboring bins", k)
	}
	assert.InDelta(t, 1800+1.0/24, out.Time[0], 1e-9)
}

func TestBinIndex(t *testing.T) {
	assert.Equal(t, 0, binIndex(0, 0.5))
	assert.Equal(t, 0, binIndex(0.49, 0.5))
	assert.Equal(t, 1, binIndex(0.5, 0.5))
	assert.Equal(t, 1, binIndex(0.5-1e-12, 0.5), "just below an edge snaps onto it")
	assert.Equal(t, 2, binIndex(1.2, 0.5))
}
