// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/starspin/schema"
)

// LightCurveProvider retrieves the light curve for one star.
// A nil series with a nil error means the source has no data for the query.
type LightCurveProvider interface {
	Fetch(ctx context.Context, query schema.LightCurveQuery) (*schema.TimeSeries, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetLightCurveStore() CacheStore
	GetResultStore() ResultStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// ResultStore checkpoints batch runs and their per-star outcomes.
type ResultStore interface {
	// BeginRun records the start of a batch run
	BeginRun(runID string, startTime time.Time, configParams map[string]any) error
	// EndRun records completion counts for a batch run
	EndRun(runID string, endTime time.Time, attempted, processed, skipped int) error
	// RecordResult stores one exported row at its input position
	RecordResult(runID string, position int, row schema.ResultRow) error
	// RecordSkip stores one skipped star at its input position
	RecordSkip(runID string, position int, skip schema.SkipRecord) error
	// GetStatus returns status information about the result store
	GetStatus() (schema.ResultStatus, error)
	// GetAllRuns returns every recorded run ordered by start time
	GetAllRuns() ([]schema.RunRecord, error)
	// GetAllResults returns every recorded result ordered by run and position
	GetAllResults() ([]schema.StarResultRecord, error)
	// GetRunResults returns the results of one run ordered by position
	GetRunResults(runID string) ([]schema.StarResultRecord, error)
	// GetAllSkips returns every recorded skip ordered by run and position
	GetAllSkips() ([]schema.SkipRecordRow, error)
	// Close closes the underlying connection
	Close() error
}

// Renderer draws a diagnostic plot for a star whose result is complete.
// It returns the location the plot was written to.
type Renderer interface {
	Render(ctx context.Context, result schema.StarResult, binned *schema.TimeSeries) (string, error)
}

// ArtifactSink stores rendered plots and exported tables.
type ArtifactSink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	Describe() string
}
