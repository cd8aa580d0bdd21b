package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/huangsam/starspin/core/lightcurve"
	"github.com/huangsam/starspin/internal/artifact"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/internal/outwriter"
	"github.com/huangsam/starspin/internal/provider"
	"github.com/huangsam/starspin/internal/render"
	"github.com/huangsam/starspin/schema"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// ExecuteInspect renders an inspection batch for the latest tracked run and prints where
// each plot went. It serves as the main entry point for the 'results inspect' command.
func ExecuteInspect(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, matchSample int, seed int64) error {
	report, err := InspectLatestRun(ctx, cfg, mgr, matchSample, seed)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteInspection(report, cfg)
}

// InspectLatestRun selects the inspection batch from the most recent run, refetches each
// light curve and renders its P and P/2 folds. Per-star failures are recorded on the item.
func InspectLatestRun(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, matchSample int, seed int64) (schema.InspectionReport, error) {
	store := mgr.GetResultStore()
	if store == nil {
		return schema.InspectionReport{}, errors.New("result tracking is disabled. Set --result-backend to inspect a run")
	}
	status, err := store.GetStatus()
	if err != nil {
		return schema.InspectionReport{}, fmt.Errorf("failed to get result status: %w", err)
	}
	if status.LastRunID == "" {
		return schema.InspectionReport{}, errors.New("no tracked runs to inspect")
	}
	records, err := store.GetRunResults(status.LastRunID)
	if err != nil {
		return schema.InspectionReport{}, err
	}
	rows := make([]schema.ResultRow, len(records))
	for i, record := range records {
		rows[i] = record.ResultRow
	}

	sink, err := artifact.New(ctx, cfg)
	if err != nil {
		return schema.InspectionReport{}, fmt.Errorf("failed to initialize artifact storage: %w", err)
	}
	if sink == nil {
		return schema.InspectionReport{}, errors.New("inspection needs an artifact backend (local or minio)")
	}
	lcProvider, err := provider.New(cfg, mgr.GetLightCurveStore())
	if err != nil {
		return schema.InspectionReport{}, err
	}

	report := schema.InspectionReport{
		RunID: status.LastRunID,
		Items: SelectInspection(rows, matchSample, seed),
	}
	if !shouldSuppressHeader(ctx) {
		logf("Inspecting %d of %d results from run %s into %s\n",
			len(report.Items), len(rows), report.RunID, sink.Describe())
	}

	renderer := render.NewFoldRenderer(sink)
	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))
	for i := range report.Items {
		g.Go(func() error {
			item := &report.Items[i]
			loc, err := inspectOne(ctx, cfg, lcProvider, renderer, *item)
			if err != nil {
				item.Error = err.Error()
				contract.LogWarn(fmt.Sprintf("Inspection failed for %s", item.Identifier), err)
				return nil
			}
			item.Plot = loc
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("inspection interrupted: %w", err)
	}
	return report, nil
}

// SelectInspection draws the inspection batch: every harmonic or subharmonic corrected row,
// then up to matchSample Match rows chosen at random as a control group. The draw depends
// only on the rows and seed. Each identifier appears once, first occurrence winning.
func SelectInspection(rows []schema.ResultRow, matchSample int, seed int64) []schema.InspectionItem {
	picked := []schema.InspectionItem{}
	seen := make(map[string]struct{}, len(rows))
	add := func(row schema.ResultRow, control bool) {
		if _, ok := seen[row.Identifier]; ok {
			return
		}
		seen[row.Identifier] = struct{}{}
		picked = append(picked, schema.InspectionItem{
			Identifier:  row.Identifier,
			Flag:        row.Flag,
			FinalPeriod: row.FinalPeriod,
			Control:     control,
		})
	}

	var matches []schema.ResultRow
	for _, row := range rows {
		switch row.Flag {
		case schema.HarmonicCorrected, schema.SubharmonicCorrected:
			add(row, false)
		case schema.Match:
			matches = append(matches, row)
		}
	}

	if matchSample > 0 && len(matches) > 0 {
		idxs := make([]int, min(matchSample, len(matches)))
		sampleuv.WithoutReplacement(idxs, len(matches), rand.NewPCG(uint64(seed), uint64(seed)))
		for _, i := range idxs {
			add(matches[i], true)
		}
	}
	return picked
}

// inspectOne refetches and preprocesses one star and renders it at its stored final period.
func inspectOne(ctx context.Context, cfg *contract.Config, lcProvider contract.LightCurveProvider, renderer contract.Renderer, item schema.InspectionItem) (string, error) {
	raw, err := fetchWithTimeout(ctx, lcProvider, cfg.Query(item.Identifier), cfg.RetrievalTimeout)
	if err != nil {
		return "", err
	}
	if raw == nil {
		return "", fmt.Errorf("no light curve for %s", cfg.Query(item.Identifier).Target)
	}
	binned, err := lightcurve.Preprocess(raw, cfg.Engine)
	if err != nil {
		return "", err
	}
	result := schema.StarResult{
		Star:       schema.Star{ID: item.Identifier},
		Reconciled: schema.ReconciledPeriod{FinalPeriod: item.FinalPeriod, Flag: item.Flag},
	}
	return renderer.Render(ctx, result, binned)
}
