package period

import "github.com/huangsam/starspin/schema"

// Reconcile merges the spectral period with the optional autocorrelation period.
// Rules are evaluated in order and the first match wins:
//
//  1. no autocorrelation period: keep the spectral period (LS_only)
//  2. ratio acf/ls strictly inside the harmonic band: take the ACF period (Harmonic_Corrected)
//  3. ratio strictly inside the subharmonic band: take the ACF period (Subharmonic_Corrected)
//  4. otherwise: keep the spectral period (Match)
//
// Ratios exactly on a band edge fall through to Match.
func Reconcile(lsPeriod float64, acfPeriod *float64, cfg schema.EngineConfig) schema.ReconciledPeriod {
	if acfPeriod == nil {
		return schema.ReconciledPeriod{FinalPeriod: lsPeriod, Flag: schema.LSOnly}
	}

	ratio := *acfPeriod / lsPeriod
	switch {
	case cfg.HarmonicBand.Contains(ratio):
		return schema.ReconciledPeriod{FinalPeriod: *acfPeriod, Flag: schema.HarmonicCorrected}
	case cfg.SubharmonicBand.Contains(ratio):
		return schema.ReconciledPeriod{FinalPeriod: *acfPeriod, Flag: schema.SubharmonicCorrected}
	default:
		return schema.ReconciledPeriod{FinalPeriod: lsPeriod, Flag: schema.Match}
	}
}

// ShouldRender reports whether a star varies enough to be worth plotting.
func ShouldRender(metric, cutoff float64) bool {
	return metric >= cutoff
}
