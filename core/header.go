package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/internal/outwriter"
	"github.com/huangsam/starspin/schema"
)

// logf writes progress lines to stderr so stdout carries only results.
func logf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}

// logBatchHeader prints a concise, 2-line header before a batch.
func logBatchHeader(cfg *contract.Config, total int, sink contract.ArtifactSink) {
	sampleName := filepath.Base(cfg.SampleFile)
	source := fmt.Sprintf("%s sector %d (%s) via %s", cfg.Mission, cfg.Sector, cfg.Author, cfg.Provider)

	// Line 1: the sample and the cap
	// Line 2: where light curves come from
	if cfg.UseEmojis {
		logf("🔭 Sample: %s (%d stars, cap %d, workers %d)\n", sampleName, total, cfg.MaxStars, cfg.Workers)
		logf("🛰️  Source: %s\n", source)
	} else {
		logf("Sample: %s (%d stars, cap %d, workers %d)\n", sampleName, total, cfg.MaxStars, cfg.Workers)
		logf("Source: %s\n", source)
	}
	if cfg.Render && sink != nil {
		logf("Plots: %s\n", sink.Describe())
	}
}

// logBatchFooter repeats the flag histogram on stderr for machine-readable outputs,
// where the table summary is not printed.
func logBatchFooter(cfg *contract.Config, summary *schema.BatchSummary) {
	if cfg.Output == schema.TextOut {
		return
	}
	prefix := ""
	if cfg.UseEmojis {
		prefix = "✅ "
	}
	logf("%sProcessed %d of %d attempted stars in %s. Flags: %s\n",
		prefix, len(summary.Results), summary.Attempted, elapsed(summary.Duration),
		outwriter.FormatFlagCounts(summary.FlagCounts()))
}

// elapsed formats a duration for progress lines.
func elapsed(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
