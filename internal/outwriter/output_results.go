package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/internal/parquet"
	"github.com/huangsam/starspin/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteBatchResults outputs a batch summary, dispatching based on the output format configured.
func WriteBatchResults(summary *schema.BatchSummary, cfg *contract.Config) error {
	rows := schema.NewResultRows(summary.Results)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResults(w, rows)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResults(w, rows)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertResultRows(rows))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultsTable(w, summary, rows, cfg)
		}, "Wrote table")
	}
	return nil
}

// writeJSONResults writes the result rows as a JSON array; absent values are null.
func writeJSONResults(w io.Writer, rows []schema.ResultRow) error {
	if rows == nil {
		rows = []schema.ResultRow{}
	}
	return writeJSON(w, rows)
}

// writeCSVResults writes the result rows in the fixed column order; absent values are empty.
func writeCSVResults(w io.Writer, rows []schema.ResultRow) error {
	return writeCSVWithHeader(w, schema.ResultColumns, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write(csvRecord(r)); err != nil {
				return err
			}
		}
		return nil
	})
}

// csvRecord formats one row in column order.
func csvRecord(r schema.ResultRow) []string {
	return []string{
		r.Identifier,
		fmtOptional(r.EffectiveTemperature, fmtStellar),
		fmtOptional(r.SurfaceGravity, fmtStellar),
		fmtOptional(r.Magnitude, fmtStellar),
		fmtPeriod(r.SpectralPeriod),
		fmtMetric(r.SpectralPower),
		fmtOptional(r.AutocorrelationPeriod, fmtPeriod),
		fmtPeriod(r.FinalPeriod),
		contract.GetPlainFlag(r.Flag),
		fmtMetric(r.VariabilityMetric),
	}
}

// writeResultsTable generates and writes the human-readable table and batch summary.
func writeResultsTable(w io.Writer, summary *schema.BatchSummary, rows []schema.ResultRow, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Identifier", "Teff", "logg", "Tmag", "P_LS", "Power", "P_ACF", "P_final", "Flag", "Variability"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	idWidth := GetMaxTableIDWidth(cfg)
	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateID(r.Identifier, idWidth),
			fmtOptional(r.EffectiveTemperature, fmtStellar),
			fmtOptional(r.SurfaceGravity, fmtStellar),
			fmtOptional(r.Magnitude, fmtStellar),
			fmtPeriod(r.SpectralPeriod),
			fmtMetric(r.SpectralPower),
			fmtOptional(r.AutocorrelationPeriod, fmtPeriod),
			fmtPeriod(r.FinalPeriod),
			flagText(r.Flag, cfg.UseColors),
			fmtMetric(r.VariabilityMetric),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	return writeSummary(w, summary, cfg)
}

// writeSummary prints the processed/skipped counts and the flag histogram.
func writeSummary(w io.Writer, summary *schema.BatchSummary, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "Processed %d of %d attempted stars (%d skipped)\n",
		len(summary.Results), summary.Attempted, len(summary.Skips)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Flags: %s\n", FormatFlagCounts(summary.FlagCounts())); err != nil {
		return err
	}
	if len(summary.Skips) > 0 {
		if _, err := fmt.Fprintf(w, "Skips: %s\n", FormatSkipCounts(summary.SkipCounts())); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Batch completed in %v with %d workers. Cache backend: %s\n",
		summary.Duration, cfg.Workers, displayBackend(cfg.CacheBackend))
	return err
}

// FormatFlagCounts renders the flag histogram in reporting order, omitting empty flags.
func FormatFlagCounts(counts map[schema.Flag]int) string {
	var parts []string
	for _, flag := range schema.AllFlags {
		if n := counts[flag]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", flag, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// FormatSkipCounts renders skip kinds in reporting order, omitting empty kinds.
func FormatSkipCounts(counts map[schema.SkipKind]int) string {
	var parts []string
	for _, kind := range schema.AllSkipKinds {
		if n := counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", kind, n))
		}
	}
	return strings.Join(parts, ", ")
}

// displayBackend shows an unset backend as none.
func displayBackend(backend schema.DatabaseBackend) string {
	if backend == "" {
		return string(schema.NoneBackend)
	}
	return string(backend)
}
