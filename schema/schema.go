// Package schema has models, constants and output records for all parts of starspin.
package schema

import "time"

// TimeSeries is a light curve: parallel arrays of sample time in days,
// flux and optional flux uncertainty.
// After preprocessing, Time is strictly increasing and every Flux is finite.
type TimeSeries struct {
	Time    []float64 `json:"time"`
	Flux    []float64 `json:"flux"`
	FluxErr []float64 `json:"flux_err,omitempty"` // nil when the source has no uncertainties
}

// Len returns the number of samples.
func (ts *TimeSeries) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.Time)
}

// HasErrors reports whether the series carries per-sample uncertainties.
func (ts *TimeSeries) HasErrors() bool {
	return ts != nil && len(ts.FluxErr) == len(ts.Time) && len(ts.FluxErr) > 0
}

// Baseline returns the time span covered by the series.
func (ts *TimeSeries) Baseline() float64 {
	if ts.Len() < 2 {
		return 0
	}
	return ts.Time[len(ts.Time)-1] - ts.Time[0]
}

// CadenceStats summarizes sample spacing; Median converts lag indices to days.
type CadenceStats struct {
	Median float64 `json:"median"`
}

// SpectralEstimate is the periodogram peak: the period with the highest power.
type SpectralEstimate struct {
	Period float64 `json:"period"`
	Power  float64 `json:"power"`
}

// AutocorrelationEstimate holds the normalized autocorrelation function and its accepted peaks.
// ChosenPeriod is nil when no peak qualifies.
type AutocorrelationEstimate struct {
	Lags         []float64 `json:"-"`
	Correlation  []float64 `json:"-"`
	PeakLags     []float64 `json:"peak_lags"`
	ChosenPeriod *float64  `json:"chosen_period"`
}

// ReconciledPeriod is the merged period and the flag explaining how it was chosen.
type ReconciledPeriod struct {
	FinalPeriod float64 `json:"final_period"`
	Flag        Flag    `json:"flag"`
}

// Star is one input row from the sample file. Optional attributes are passed through unmodified.
type Star struct {
	ID   string   `json:"id"`
	Teff *float64 `json:"teff,omitempty"`
	Logg *float64 `json:"logg,omitempty"`
	Tmag *float64 `json:"tmag,omitempty"`
}

// LightCurveQuery identifies which light curve to retrieve for a star.
type LightCurveQuery struct {
	StarID  string `json:"star_id"`
	Target  string `json:"target"` // e.g. "TIC 12345"
	Mission string `json:"mission"`
	Sector  int    `json:"sector"`
	Author  string `json:"author"`
}

// StarResult is the complete analysis of one star. It is built once and never mutated.
type StarResult struct {
	Star            Star                    `json:"star"`
	Spectral        SpectralEstimate        `json:"spectral"`
	Autocorrelation AutocorrelationEstimate `json:"autocorrelation"`
	Reconciled      ReconciledPeriod        `json:"reconciled"`
	Variability     float64                 `json:"variability"`
	Render          bool                    `json:"render"`
}

// SkipRecord explains why a star produced no result.
type SkipRecord struct {
	StarID string   `json:"star_id"`
	Kind   SkipKind `json:"kind"`
	Reason string   `json:"reason"`
}

// StarOutcome holds exactly one of a result or a skip.
type StarOutcome struct {
	Result *StarResult
	Skip   *SkipRecord
}

// ResultOutcome wraps a completed result.
func ResultOutcome(r StarResult) StarOutcome {
	return StarOutcome{Result: &r}
}

// SkipOutcome wraps a skip.
func SkipOutcome(starID string, kind SkipKind, reason string) StarOutcome {
	return StarOutcome{Skip: &SkipRecord{StarID: starID, Kind: kind, Reason: reason}}
}

// IsSkip reports whether the outcome is a skip.
func (o StarOutcome) IsSkip() bool {
	return o.Skip != nil
}

// BatchSummary is what a batch run produced, in input order.
type BatchSummary struct {
	RunID     string        `json:"run_id"`
	Attempted int           `json:"attempted"`
	Results   []StarResult  `json:"results"`
	Skips     []SkipRecord  `json:"skips"`
	Duration  time.Duration `json:"duration"`
}

// FlagCounts tallies results per flag.
func (b *BatchSummary) FlagCounts() map[Flag]int {
	counts := make(map[Flag]int, len(AllFlags))
	for _, r := range b.Results {
		counts[r.Reconciled.Flag]++
	}
	return counts
}

// SkipCounts tallies skips per kind.
func (b *BatchSummary) SkipCounts() map[SkipKind]int {
	counts := make(map[SkipKind]int, len(AllSkipKinds))
	for _, s := range b.Skips {
		counts[s.Kind]++
	}
	return counts
}

// StarDiagnostics describes the series a result was computed from.
type StarDiagnostics struct {
	RawSamples    int     `json:"raw_samples"`
	BinnedSamples int     `json:"binned_samples"`
	Cadence       float64 `json:"cadence"`  // median spacing of the binned series in days
	Baseline      float64 `json:"baseline"` // days
}

// EstimateReport is the single-star view printed by the estimate command.
// Exactly one of Result or Skip is set.
type EstimateReport struct {
	Query       LightCurveQuery `json:"query"`
	Result      *StarResult     `json:"result,omitempty"`
	Skip        *SkipRecord     `json:"skip,omitempty"`
	Diagnostics StarDiagnostics `json:"diagnostics"`
	Plot        string          `json:"plot,omitempty"`
}

// ReconcileReport is the output of the reconcile command.
type ReconcileReport struct {
	SpectralPeriod        float64          `json:"spectral_period"`
	AutocorrelationPeriod *float64         `json:"autocorrelation_period"`
	Ratio                 *float64         `json:"ratio"`
	Reconciled            ReconciledPeriod `json:"reconciled"`
}

// InspectionItem is one star of an inspection batch. Control marks the random Match sample.
type InspectionItem struct {
	Identifier  string  `json:"identifier"`
	Flag        Flag    `json:"flag"`
	FinalPeriod float64 `json:"final_period"`
	Control     bool    `json:"control"`
	Plot        string  `json:"plot,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// InspectionReport lists the stars drawn for visual inspection from one tracked run.
type InspectionReport struct {
	RunID string           `json:"run_id"`
	Items []InspectionItem `json:"items"`
}
