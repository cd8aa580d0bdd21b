package schema

// Engine defaults.
const (
	DefaultBinWidth          = 2.0 / 24.0 // days
	DefaultMinSamples        = 10
	DefaultMinPeriod         = 0.5  // days
	DefaultMaxPeriod         = 15.0 // days
	DefaultOversample        = 5.0
	DefaultACFMinHeight      = 0.2
	DefaultACFMinDistance    = 10  // samples
	DefaultACFMinLag         = 0.5 // days
	DefaultVariabilityCutoff = 0.0015
)

// Band is an open ratio interval (Low, High).
type Band struct {
	Low  float64 `json:"low" yaml:"low" mapstructure:"low"`
	High float64 `json:"high" yaml:"high" mapstructure:"high"`
}

// Contains reports whether ratio lies strictly inside the band.
func (b Band) Contains(ratio float64) bool {
	return ratio > b.Low && ratio < b.High
}

// Default reconciliation bands for the ACF/LS period ratio.
var (
	DefaultHarmonicBand    = Band{Low: 1.8, High: 2.2}
	DefaultSubharmonicBand = Band{Low: 0.45, High: 0.55}
)

// EngineConfig carries every numeric knob of the period engine.
type EngineConfig struct {
	BinWidth          float64 `json:"bin_width" yaml:"bin_width"`
	MinSamples        int     `json:"min_samples" yaml:"min_samples"`
	MinPeriod         float64 `json:"min_period" yaml:"min_period"`
	MaxPeriod         float64 `json:"max_period" yaml:"max_period"`
	Oversample        float64 `json:"oversample" yaml:"oversample"`
	ACFMinHeight      float64 `json:"acf_min_height" yaml:"acf_min_height"`
	ACFMinDistance    int     `json:"acf_min_distance" yaml:"acf_min_distance"`
	ACFMinLag         float64 `json:"acf_min_lag" yaml:"acf_min_lag"`
	HarmonicBand      Band    `json:"harmonic_band" yaml:"harmonic_band"`
	SubharmonicBand   Band    `json:"subharmonic_band" yaml:"subharmonic_band"`
	VariabilityCutoff float64 `json:"variability_cutoff" yaml:"variability_cutoff"`
}

// DefaultEngineConfig returns the engine configuration used when nothing is overridden.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BinWidth:          DefaultBinWidth,
		MinSamples:        DefaultMinSamples,
		MinPeriod:         DefaultMinPeriod,
		MaxPeriod:         DefaultMaxPeriod,
		Oversample:        DefaultOversample,
		ACFMinHeight:      DefaultACFMinHeight,
		ACFMinDistance:    DefaultACFMinDistance,
		ACFMinLag:         DefaultACFMinLag,
		HarmonicBand:      DefaultHarmonicBand,
		SubharmonicBand:   DefaultSubharmonicBand,
		VariabilityCutoff: DefaultVariabilityCutoff,
	}
}
