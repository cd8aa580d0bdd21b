package schema

import "time"

// RunRecord represents a row from the starspin_runs table.
type RunRecord struct {
	RunID        string
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int64
	Attempted    int32
	Processed    int32
	Skipped      int32
	ConfigParams *string
}

// StarResultRecord represents a row from the starspin_star_results table.
type StarResultRecord struct {
	RunID      string
	Position   int32
	RecordedAt time.Time
	ResultRow
}

// SkipRecordRow represents a row from the starspin_star_skips table.
type SkipRecordRow struct {
	RunID      string
	Position   int32
	RecordedAt time.Time
	SkipRecord
}
