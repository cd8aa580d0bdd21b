package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/starspin/core/lightcurve"
	"github.com/huangsam/starspin/core/period"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
)

// starTrace keeps what a star's analysis was computed from, for diagnostics and rendering.
type starTrace struct {
	rawSamples int
	binned     *schema.TimeSeries
}

// AnalyzeStar runs preprocessing, both estimators, the reconciler and the variability gate
// on one raw series. It returns the binned series alongside the result.
func AnalyzeStar(star schema.Star, raw *schema.TimeSeries, engine schema.EngineConfig) (schema.StarResult, *schema.TimeSeries, error) {
	binned, err := lightcurve.Preprocess(raw, engine)
	if err != nil {
		return schema.StarResult{}, nil, err
	}

	spectral, err := period.EstimateSpectral(binned, engine)
	if err != nil {
		return schema.StarResult{}, binned, fmt.Errorf("spectral estimate failed: %w", err)
	}
	acf, err := period.EstimateAutocorrelation(binned, engine)
	if err != nil {
		return schema.StarResult{}, binned, fmt.Errorf("autocorrelation estimate failed: %w", err)
	}

	metric := lightcurve.Variability(binned)
	return schema.StarResult{
		Star:            star,
		Spectral:        spectral,
		Autocorrelation: acf,
		Reconciled:      period.Reconcile(spectral.Period, acf.ChosenPeriod, engine),
		Variability:     metric,
		Render:          period.ShouldRender(metric, engine.VariabilityCutoff),
	}, binned, nil
}

// analyzeOne retrieves and analyzes one star, turning every failure into a skip.
// Panics are recovered into processing failures.
func analyzeOne(ctx context.Context, cfg *contract.Config, provider contract.LightCurveProvider, star schema.Star) (outcome schema.StarOutcome, trace starTrace) {
	defer func() {
		if r := recover(); r != nil {
			outcome = schema.SkipOutcome(star.ID, schema.SkipProcessingFailure, fmt.Sprintf("panic: %v", r))
		}
	}()

	raw, err := fetchWithTimeout(ctx, provider, cfg.Query(star.ID), cfg.RetrievalTimeout)
	if err != nil {
		return schema.SkipOutcome(star.ID, schema.SkipProcessingFailure, err.Error()), trace
	}
	if raw == nil {
		reason := fmt.Sprintf("no light curve for %s (mission %s, sector %d, author %s)",
			cfg.Query(star.ID).Target, cfg.Mission, cfg.Sector, cfg.Author)
		return schema.SkipOutcome(star.ID, schema.SkipNoData, reason), trace
	}
	trace.rawSamples = raw.Len()

	result, binned, err := AnalyzeStar(star, raw, cfg.Engine)
	trace.binned = binned
	switch {
	case errors.Is(err, lightcurve.ErrInsufficientSamples):
		return schema.SkipOutcome(star.ID, schema.SkipInsufficientSamples, err.Error()), trace
	case err != nil:
		return schema.SkipOutcome(star.ID, schema.SkipProcessingFailure, err.Error()), trace
	}
	return schema.ResultOutcome(result), trace
}

// fetchWithTimeout bounds a single retrieval.
func fetchWithTimeout(ctx context.Context, provider contract.LightCurveProvider, query schema.LightCurveQuery, timeout time.Duration) (*schema.TimeSeries, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	raw, err := provider.Fetch(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("retrieval timed out after %v", timeout)
		}
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	return raw, nil
}

// renderResult draws the plot for a gated result. Failures only warn.
func renderResult(ctx context.Context, renderer contract.Renderer, result schema.StarResult, binned *schema.TimeSeries) string {
	if renderer == nil || !result.Render || binned == nil {
		return ""
	}
	loc, err := renderer.Render(ctx, result, binned)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Plot rendering failed for %s", result.Star.ID), err)
		return ""
	}
	return loc
}
