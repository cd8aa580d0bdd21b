package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{3.14159265, 4, 3.1416},
		{0.00123456789, 6, 0.001235},
		{2.5, 0, 3},
		{-1.23456, 2, -1.23},
		{7, 4, 7},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round(tt.in, tt.places), 1e-12)
	}
	assert.True(t, math.IsNaN(Round(math.NaN(), 4)))
}

func TestNewResultRow(t *testing.T) {
	acf := 6.123456
	r := StarResult{
		Star:            Star{ID: "12345", Teff: ptr(5700), Tmag: ptr(9.5)},
		Spectral:        SpectralEstimate{Period: 3.0612345, Power: 0.8123456789},
		Autocorrelation: AutocorrelationEstimate{ChosenPeriod: &acf},
		Reconciled:      ReconciledPeriod{FinalPeriod: 6.123456, Flag: HarmonicCorrected},
		Variability:     0.0123456789,
	}

	row := NewResultRow(r)
	assert.Equal(t, "12345", row.Identifier)
	assert.Equal(t, 5700.0, *row.EffectiveTemperature)
	assert.Nil(t, row.SurfaceGravity)
	assert.Equal(t, 9.5, *row.Magnitude)
	assert.InDelta(t, 3.0612, row.SpectralPeriod, 1e-12)
	assert.InDelta(t, 0.812346, row.SpectralPower, 1e-12)
	require.NotNil(t, row.AutocorrelationPeriod)
	assert.InDelta(t, 6.1235, *row.AutocorrelationPeriod, 1e-12)
	assert.InDelta(t, 6.1235, row.FinalPeriod, 1e-12)
	assert.Equal(t, HarmonicCorrected, row.Flag)
	assert.InDelta(t, 0.012346, row.VariabilityMetric, 1e-12)
}

func TestNewResultRow_NoAutocorrelationPeak(t *testing.T) {
	row := NewResultRow(StarResult{
		Star:       Star{ID: "1"},
		Spectral:   SpectralEstimate{Period: 2, Power: 0.5},
		Reconciled: ReconciledPeriod{FinalPeriod: 2, Flag: LSOnly},
	})
	assert.Nil(t, row.AutocorrelationPeriod)
	assert.Equal(t, LSOnly, row.Flag)
}

func TestResultColumnsOrder(t *testing.T) {
	assert.Equal(t, "identifier", ResultColumns[0])
	assert.Equal(t, "autocorrelation_period", ResultColumns[6])
	assert.Equal(t, "variability_metric", ResultColumns[len(ResultColumns)-1])
	assert.Len(t, ResultColumns, 10)
}

func TestBandContainsIsStrict(t *testing.T) {
	assert.False(t, DefaultHarmonicBand.Contains(1.8))
	assert.False(t, DefaultHarmonicBand.Contains(2.2))
	assert.True(t, DefaultHarmonicBand.Contains(2.0))
	assert.False(t, DefaultSubharmonicBand.Contains(0.45))
	assert.False(t, DefaultSubharmonicBand.Contains(0.55))
	assert.True(t, DefaultSubharmonicBand.Contains(0.5))
}

func TestStarOutcome(t *testing.T) {
	ok := ResultOutcome(StarResult{Star: Star{ID: "a"}})
	assert.False(t, ok.IsSkip())
	require.NotNil(t, ok.Result)
	assert.Equal(t, "a", ok.Result.Star.ID)

	skip := SkipOutcome("b", SkipNoData, "no light curve")
	assert.True(t, skip.IsSkip())
	assert.Nil(t, skip.Result)
	assert.Equal(t, SkipNoData, skip.Skip.Kind)
}

func TestBatchSummaryCounts(t *testing.T) {
	b := BatchSummary{
		Results: []StarResult{
			{Reconciled: ReconciledPeriod{Flag: Match}},
			{Reconciled: ReconciledPeriod{Flag: Match}},
			{Reconciled: ReconciledPeriod{Flag: LSOnly}},
		},
		Skips: []SkipRecord{{Kind: SkipNoData}, {Kind: SkipProcessingFailure}, {Kind: SkipNoData}},
	}
	assert.Equal(t, 2, b.FlagCounts()[Match])
	assert.Equal(t, 1, b.FlagCounts()[LSOnly])
	assert.Equal(t, 0, b.FlagCounts()[HarmonicCorrected])
	assert.Equal(t, 2, b.SkipCounts()[SkipNoData])
}

func TestTimeSeriesHelpers(t *testing.T) {
	var nilSeries *TimeSeries
	assert.Equal(t, 0, nilSeries.Len())
	assert.False(t, nilSeries.HasErrors())

	ts := &TimeSeries{Time: []float64{1, 2, 4}, Flux: []float64{1, 1, 1}}
	assert.Equal(t, 3, ts.Len())
	assert.Equal(t, 3.0, ts.Baseline())
	assert.False(t, ts.HasErrors())
	ts.FluxErr = []float64{0.1, 0.1, 0.1}
	assert.True(t, ts.HasErrors())
}

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	assert.InDelta(t, 1.0/12.0, cfg.BinWidth, 1e-12)
	assert.Equal(t, 10, cfg.MinSamples)
	assert.Equal(t, 0.5, cfg.MinPeriod)
	assert.Equal(t, 15.0, cfg.MaxPeriod)
	assert.Equal(t, 0.0015, cfg.VariabilityCutoff)
	assert.Equal(t, Band{Low: 1.8, High: 2.2}, cfg.HarmonicBand)
}
