package period

import (
	"math"
	"math/rand"
	"testing"

	"github.com/huangsam/starspin/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sinusoid samples a pure sine of the given period every step days for span days.
func sinusoid(period, step, span float64) *schema.TimeSeries {
	return sinusoidAmplitude(period, 0.01, step, span)
}

func sinusoidAmplitude(period, amplitude, step, span float64) *schema.TimeSeries {
	ts := &schema.TimeSeries{}
	for t := 0.0; t < span; t += step {
		ts.Time = append(ts.Time, t)
		ts.Flux = append(ts.Flux, 1+amplitude*math.Sin(2*math.Pi*t/period))
	}
	return ts
}

func TestFrequencyGrid(t *testing.T) {
	grid, err := FrequencyGrid(27, 0.5, 15, 5)
	require.NoError(t, err)
	require.NotEmpty(t, grid)
	assert.InDelta(t, 1.0/15, grid[0], 1e-12)
	assert.Less(t, grid[len(grid)-1], 2.0)
	assert.InDelta(t, 1.0/135, grid[1]-grid[0], 1e-12)

	_, err = FrequencyGrid(0, 0.5, 15, 5)
	assert.ErrorIs(t, err, ErrFlatSeries)

	_, err = FrequencyGrid(27, 15, 0.5, 5)
	assert.ErrorIs(t, err, ErrEmptySearch)
}

func TestEstimateSpectral_RecoversSinusoid(t *testing.T) {
	ts := sinusoid(3.0, 1.0/12, 27)
	est, err := EstimateSpectral(ts, schema.DefaultEngineConfig())
	require.NoError(t, err)
	assert.InDelta(t, 3.0, est.Period, 0.1)
	assert.InDelta(t, 0.01, est.Power, 0.001)
}

func TestEstimateSpectral_PowerIsAmplitude(t *testing.T) {
	for _, amplitude := range []float64{0.001, 0.01, 0.1} {
		est, err := EstimateSpectral(sinusoidAmplitude(3.0, amplitude, 1.0/12, 27), schema.DefaultEngineConfig())
		require.NoError(t, err)
		assert.InDelta(t, 3.0, est.Period, 0.1)
		assert.InEpsilon(t, amplitude, est.Power, 0.1, "amplitude %v", amplitude)
	}
}

func TestEstimateSpectral_PeriodWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ts := &schema.TimeSeries{}
	for i := range 300 {
		ts.Time = append(ts.Time, float64(i)/12)
		ts.Flux = append(ts.Flux, 1+0.001*rng.NormFloat64())
	}
	cfg := schema.DefaultEngineConfig()
	est, err := EstimateSpectral(ts, cfg)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, est.Period, cfg.MinPeriod)
	assert.LessOrEqual(t, est.Period, cfg.MaxPeriod)
	assert.GreaterOrEqual(t, est.Power, 0.0)
}

func TestEstimateSpectral_FlatSeries(t *testing.T) {
	ts := &schema.TimeSeries{}
	for i := range 50 {
		ts.Time = append(ts.Time, float64(i)/12)
		ts.Flux = append(ts.Flux, 1)
	}
	_, err := EstimateSpectral(ts, schema.DefaultEngineConfig())
	assert.ErrorIs(t, err, ErrFlatSeries)
}

func TestAutocorrelate_Normalized(t *testing.T) {
	acf, err := Autocorrelate([]float64{1, 3, 2, 5, 4})
	require.NoError(t, err)
	assert.Equal(t, 1.0, acf[0])
	for _, v := range acf {
		assert.LessOrEqual(t, math.Abs(v), 1.0+1e-12)
	}

	_, err = Autocorrelate([]float64{2, 2, 2})
	assert.ErrorIs(t, err, ErrFlatSeries)

	_, err = Autocorrelate(nil)
	assert.ErrorIs(t, err, ErrFlatSeries)
}

func TestFindPeaks(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		height   float64
		distance int
		want     []int
	}{
		{"simple maxima", []float64{0, 1, 0, 2, 0}, 0, 1, []int{1, 3}},
		{"odd plateau", []float64{0, 1, 1, 1, 0}, 0, 1, []int{2}},
		{"even plateau rounds down", []float64{0, 2, 2, 0}, 0, 1, []int{1}},
		{"endpoints excluded", []float64{3, 1, 2}, 0, 1, nil},
		{"rising edge into plateau at end", []float64{0, 1, 1}, 0, 1, nil},
		{"height filter", []float64{0, 0.1, 0, 0.5, 0}, 0.2, 1, []int{3}},
		{"height is inclusive", []float64{0, 0.2, 0}, 0.2, 1, []int{1}},
		{"distance keeps tallest", []float64{0, 5, 0, 3, 0, 4, 0}, 0, 3, []int{1, 5}},
		{"distance ties keep later", []float64{0, 2, 0, 2, 0}, 0, 3, []int{3}},
		{"distance satisfied", []float64{0, 2, 0, 2, 0}, 0, 2, []int{1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindPeaks(tt.x, tt.height, tt.distance))
		})
	}
}

func TestEstimateAutocorrelation_RecoversSinusoid(t *testing.T) {
	ts := sinusoid(3.0, 1.0/12, 27)
	est, err := EstimateAutocorrelation(ts, schema.DefaultEngineConfig())
	require.NoError(t, err)
	assert.Equal(t, 1.0, est.Correlation[0])
	require.NotNil(t, est.ChosenPeriod)
	assert.InDelta(t, 3.0, *est.ChosenPeriod, 0.1)
	assert.Len(t, est.Lags, ts.Len())
}

func TestEstimateAutocorrelation_SkipsShortLags(t *testing.T) {
	// A 0.4 d signal has its first ACF peak below the 0.5 d floor.
	ts := sinusoid(0.4, 1.0/48, 10)
	est, err := EstimateAutocorrelation(ts, schema.DefaultEngineConfig())
	require.NoError(t, err)
	require.NotNil(t, est.ChosenPeriod)
	assert.InDelta(t, 0.8, *est.ChosenPeriod, 0.05)
	for _, lag := range est.PeakLags {
		assert.Greater(t, lag, 0.5)
	}
}

func TestEstimateAutocorrelation_NoPeak(t *testing.T) {
	ts := &schema.TimeSeries{}
	for i := range 120 {
		ts.Time = append(ts.Time, float64(i)/12)
		ts.Flux = append(ts.Flux, 1+0.001*float64(i))
	}
	est, err := EstimateAutocorrelation(ts, schema.DefaultEngineConfig())
	require.NoError(t, err)
	assert.Nil(t, est.ChosenPeriod)
	assert.Empty(t, est.PeakLags)
}

func TestEstimateAutocorrelation_Properties(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	rng := rand.New(rand.NewSource(42))
	for trial := range 20 {
		ts := &schema.TimeSeries{}
		period := 0.6 + 10*rng.Float64()
		for i := range 250 {
			tm := float64(i) / 12
			ts.Time = append(ts.Time, tm)
			ts.Flux = append(ts.Flux, 1+0.01*math.Sin(2*math.Pi*tm/period)+0.005*rng.NormFloat64())
		}
		est, err := EstimateAutocorrelation(ts, cfg)
		require.NoError(t, err, "trial %d", trial)
		assert.Equal(t, 1.0, est.Correlation[0])
		for i, lag := range est.PeakLags {
			assert.Greater(t, lag, cfg.ACFMinLag)
			if i > 0 {
				gap := (lag - est.PeakLags[i-1]) * 12
				assert.GreaterOrEqual(t, gap, float64(cfg.ACFMinDistance)-1e-6)
			}
		}
		if est.ChosenPeriod != nil {
			assert.Equal(t, est.PeakLags[0], *est.ChosenPeriod)
		}
	}
}

func TestReconcile_Scenarios(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	p := func(v float64) *float64 { return &v }

	tests := []struct {
		name      string
		ls        float64
		acf       *float64
		wantFinal float64
		wantFlag  schema.Flag
	}{
		{"no acf", 3.0, nil, 3.0, schema.LSOnly},
		{"harmonic", 3.0, p(6.0), 6.0, schema.HarmonicCorrected},
		{"subharmonic", 7.0, p(3.5), 3.5, schema.SubharmonicCorrected},
		{"match", 5.0, p(5.02), 5.0, schema.Match},
		{"harmonic low edge", 1.0, p(1.8), 1.0, schema.Match},
		{"harmonic high edge", 1.0, p(2.2), 1.0, schema.Match},
		{"subharmonic low edge", 1.0, p(0.45), 1.0, schema.Match},
		{"subharmonic high edge", 1.0, p(0.55), 1.0, schema.Match},
		{"far off", 2.0, p(9.0), 2.0, schema.Match},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.ls, tt.acf, cfg)
			assert.Equal(t, tt.wantFinal, got.FinalPeriod)
			assert.Equal(t, tt.wantFlag, got.Flag)
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	acf := 6.0
	assert.Equal(t, Reconcile(3.0, &acf, cfg), Reconcile(3.0, &acf, cfg))
}

func TestReconcile_CustomBands(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	cfg.HarmonicBand = schema.Band{Low: 1.5, High: 2.5}
	acf := 4.8
	got := Reconcile(3.0, &acf, cfg)
	assert.Equal(t, schema.HarmonicCorrected, got.Flag)
	assert.Equal(t, 4.8, got.FinalPeriod)
}

func TestShouldRender(t *testing.T) {
	assert.True(t, ShouldRender(0.0015, 0.0015))
	assert.True(t, ShouldRender(0.01, 0.0015))
	assert.False(t, ShouldRender(0.0014, 0.0015))
	assert.True(t, ShouldRender(0, 0))
}
