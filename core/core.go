// Package core has core logic for batch period estimation, single-star estimates and reconciliation.
package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime"
	"os"
	"path/filepath"

	"github.com/huangsam/starspin/core/lightcurve"
	"github.com/huangsam/starspin/core/period"
	"github.com/huangsam/starspin/internal/artifact"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/internal/outwriter"
	"github.com/huangsam/starspin/internal/provider"
	"github.com/huangsam/starspin/internal/render"
	"github.com/huangsam/starspin/internal/sample"
	"github.com/huangsam/starspin/schema"
)

// ErrInvalidPeriod is returned when a period given for reconciliation is not positive and finite.
var ErrInvalidPeriod = errors.New("period must be positive and finite")

// ExecuteBatch loads the sample, runs the batch and prints the results.
// It serves as the main entry point for the 'run' command.
func ExecuteBatch(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	stars, err := sample.Load(cfg.SampleFile, sample.MappingFromConfig(cfg))
	if err != nil {
		return err
	}

	lcProvider, err := provider.New(cfg, mgr.GetLightCurveStore())
	if err != nil {
		return err
	}
	sink, renderer, err := newRenderer(ctx, cfg)
	if err != nil {
		return err
	}

	if !shouldSuppressHeader(ctx) {
		logBatchHeader(cfg, len(stars), sink)
	}

	summary, runErr := RunBatch(ctx, cfg, stars, Batch{
		Provider: lcProvider,
		Results:  mgr.GetResultStore(),
		Renderer: renderer,
	})

	if err := outwriter.NewOutWriter().WriteResults(summary, cfg); err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		logBatchFooter(cfg, summary)
	}
	if sink != nil && cfg.OutputFile != "" && cfg.ArtifactBackend == schema.MinioArtifacts {
		if err := publishFile(ctx, sink, cfg.OutputFile); err != nil {
			contract.LogWarn("Failed to upload exported results", err)
		}
	}
	return runErr
}

// ExecuteEstimate analyzes one star with full diagnostics and prints the report.
// It serves as the main entry point for the 'estimate' command.
func ExecuteEstimate(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, starID string) error {
	report, err := EstimateStar(ctx, cfg, mgr, starID)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteEstimate(report, cfg)
}

// EstimateStar analyzes one star. When a sample file is configured, the star's attributes
// are taken from it. Per-star failures are reported as a skip, not as an error.
func EstimateStar(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, starID string) (schema.EstimateReport, error) {
	starID = sample.NormalizeID(starID)
	if starID == "" {
		return schema.EstimateReport{}, errors.New("a star identifier is required")
	}
	star, err := lookupStar(cfg, starID)
	if err != nil {
		return schema.EstimateReport{}, err
	}

	lcProvider, err := provider.New(cfg, mgr.GetLightCurveStore())
	if err != nil {
		return schema.EstimateReport{}, err
	}
	_, renderer, err := newRenderer(ctx, cfg)
	if err != nil {
		return schema.EstimateReport{}, err
	}

	outcome, trace := analyzeOne(ctx, cfg, lcProvider, star)
	report := schema.EstimateReport{
		Query:  cfg.Query(starID),
		Result: outcome.Result,
		Skip:   outcome.Skip,
		Diagnostics: schema.StarDiagnostics{
			RawSamples: trace.rawSamples,
		},
	}
	if trace.binned != nil {
		report.Diagnostics.BinnedSamples = trace.binned.Len()
		report.Diagnostics.Cadence = lightcurve.Cadence(trace.binned).Median
		report.Diagnostics.Baseline = trace.binned.Baseline()
	}
	if outcome.Result != nil {
		report.Plot = renderResult(ctx, renderer, *outcome.Result, trace.binned)
	}
	return report, nil
}

// ExecuteReconcile reconciles two given periods and prints the outcome.
// It serves as the main entry point for the 'reconcile' command.
func ExecuteReconcile(_ context.Context, cfg *contract.Config, lsPeriod float64, acfPeriod *float64) error {
	report, err := ReconcilePeriods(lsPeriod, acfPeriod, cfg.Engine)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReconcile(report, cfg)
}

// ReconcilePeriods validates the inputs and runs the reconciler. A nil acfPeriod
// means the autocorrelation estimate is undefined.
func ReconcilePeriods(lsPeriod float64, acfPeriod *float64, engine schema.EngineConfig) (schema.ReconcileReport, error) {
	if !validPeriod(lsPeriod) {
		return schema.ReconcileReport{}, fmt.Errorf("spectral %w (got %v)", ErrInvalidPeriod, lsPeriod)
	}
	report := schema.ReconcileReport{SpectralPeriod: lsPeriod}
	if acfPeriod != nil {
		if !validPeriod(*acfPeriod) {
			return schema.ReconcileReport{}, fmt.Errorf("autocorrelation %w (got %v)", ErrInvalidPeriod, *acfPeriod)
		}
		acf := *acfPeriod
		ratio := acf / lsPeriod
		report.AutocorrelationPeriod = &acf
		report.Ratio = &ratio
	}
	report.Reconciled = period.Reconcile(lsPeriod, report.AutocorrelationPeriod, engine)
	return report, nil
}

func validPeriod(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}

// lookupStar finds starID in the configured sample, or returns a bare star when there is none.
func lookupStar(cfg *contract.Config, starID string) (schema.Star, error) {
	if cfg.SampleFile == "" {
		return schema.Star{ID: starID}, nil
	}
	stars, err := sample.Load(cfg.SampleFile, sample.MappingFromConfig(cfg))
	if err != nil {
		return schema.Star{}, err
	}
	for _, s := range stars {
		if s.ID == starID {
			return s, nil
		}
	}
	return schema.Star{ID: starID}, nil
}

// newRenderer builds the artifact sink and plot renderer when rendering is enabled.
func newRenderer(ctx context.Context, cfg *contract.Config) (contract.ArtifactSink, contract.Renderer, error) {
	sink, err := artifact.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize artifact storage: %w", err)
	}
	if sink == nil || !cfg.Render {
		return sink, nil, nil
	}
	return sink, render.NewFoldRenderer(sink), nil
}

// publishFile uploads a written output file to the artifact sink.
func publishFile(ctx context.Context, sink contract.ArtifactSink, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	loc, err := sink.Put(ctx, filepath.Base(path), contentType, data)
	if err != nil {
		return err
	}
	logf("Uploaded %s to %s\n", path, loc)
	return nil
}
