package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
	"golang.org/x/sync/errgroup"
)

// Batch holds the collaborators of a batch run. Results and Renderer are optional.
type Batch struct {
	Provider contract.LightCurveProvider
	Results  contract.ResultStore
	Renderer contract.Renderer
}

// RunBatch analyzes stars in input order until cfg.MaxStars results have been produced
// or the sample is exhausted. Stars are processed in windows of cfg.Workers and merged
// in input order, so the output does not depend on the worker count.
// Skipped stars do not count towards the cap. When ctx is canceled the summary gathered
// so far is returned together with the context error.
func RunBatch(ctx context.Context, cfg *contract.Config, stars []schema.Star, b Batch) (*schema.BatchSummary, error) {
	start := time.Now()
	summary := &schema.BatchSummary{
		RunID:   uuid.NewString(),
		Results: []schema.StarResult{},
		Skips:   []schema.SkipRecord{},
	}
	tracker := beginRun(b.Results, summary.RunID, start, cfg)

	workers := max(cfg.Workers, 1)
	var runErr error
	for next := 0; next < len(stars) && len(summary.Results) < cfg.MaxStars; {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("batch interrupted: %w", err)
			break
		}

		// Never take more stars than results still allowed, so no star past the cap is fetched
		remaining := cfg.MaxStars - len(summary.Results)
		end := min(next+workers, next+remaining, len(stars))
		outcomes := processWindow(ctx, cfg, b, stars[next:end])

		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("batch interrupted: %w", err)
			break
		}
		for i, outcome := range outcomes {
			position := next + i
			summary.Attempted++
			tracker.record(position, outcome)
			if outcome.IsSkip() {
				summary.Skips = append(summary.Skips, *outcome.Skip)
			} else {
				summary.Results = append(summary.Results, *outcome.Result)
			}
		}
		next = end
	}

	summary.Duration = time.Since(start)
	tracker.end(time.Now(), summary)
	return summary, runErr
}

// processWindow analyzes a window of stars concurrently and returns outcomes in window order.
// Each goroutine writes only its own slot.
func processWindow(ctx context.Context, cfg *contract.Config, b Batch, window []schema.Star) []schema.StarOutcome {
	outcomes := make([]schema.StarOutcome, len(window))
	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))
	for i, star := range window {
		g.Go(func() error {
			outcome, trace := analyzeOne(ctx, cfg, b.Provider, star)
			if outcome.Result != nil {
				renderResult(ctx, b.Renderer, *outcome.Result, trace.binned)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return outcomes
}

// runTracker checkpoints outcomes to the result store. It disables itself when
// the run cannot be registered, and store errors never stop the batch.
type runTracker struct {
	store contract.ResultStore
	runID string
}

// beginRun registers a run, returning a no-op tracker when tracking is off or fails.
func beginRun(store contract.ResultStore, runID string, start time.Time, cfg *contract.Config) *runTracker {
	if store == nil {
		return &runTracker{}
	}
	if err := store.BeginRun(runID, start, cfg.Params()); err != nil {
		contract.LogWarn("Result tracking initialization failed", err)
		return &runTracker{}
	}
	return &runTracker{store: store, runID: runID}
}

// record stores one outcome at its input position.
func (t *runTracker) record(position int, outcome schema.StarOutcome) {
	if t.store == nil {
		return
	}
	var err error
	var id string
	if outcome.IsSkip() {
		id = outcome.Skip.StarID
		err = t.store.RecordSkip(t.runID, position, *outcome.Skip)
	} else {
		id = outcome.Result.Star.ID
		err = t.store.RecordResult(t.runID, position, schema.NewResultRow(*outcome.Result))
	}
	if err != nil {
		logTrackingError(id, err)
	}
}

// end finalizes the run counts.
func (t *runTracker) end(endTime time.Time, summary *schema.BatchSummary) {
	if t.store == nil {
		return
	}
	if err := t.store.EndRun(t.runID, endTime, summary.Attempted, len(summary.Results), len(summary.Skips)); err != nil {
		contract.LogWarn("Failed to finalize result tracking", err)
	}
}

// logTrackingError logs checkpoint errors to stderr without disrupting the batch.
func logTrackingError(starID string, err error) {
	contract.LogWarn(fmt.Sprintf("Result tracking failed for %s", starID), err)
}
