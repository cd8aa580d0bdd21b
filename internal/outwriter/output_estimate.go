package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteEstimateReport outputs a single-star report. JSON is used for json output
// and a key/value table otherwise.
func WriteEstimateReport(report schema.EstimateReport, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeKeyValueTable(w, estimatePairs(report, cfg.UseColors))
	}, "Wrote table")
}

// WriteReconcileReport outputs a reconciliation of two given periods.
func WriteReconcileReport(report schema.ReconcileReport, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeKeyValueTable(w, reconcilePairs(report, cfg.UseColors))
	}, "Wrote table")
}

// estimatePairs lists the report fields in display order.
func estimatePairs(report schema.EstimateReport, useColors bool) [][]string {
	d := report.Diagnostics
	pairs := [][]string{
		{"Target", report.Query.Target},
		{"Mission", fmt.Sprintf("%s sector %d (%s)", report.Query.Mission, report.Query.Sector, report.Query.Author)},
		{"Raw samples", strconv.Itoa(d.RawSamples)},
	}
	if report.Skip != nil {
		return append(pairs,
			[]string{"Skipped", string(report.Skip.Kind)},
			[]string{"Reason", report.Skip.Reason},
		)
	}
	if report.Result == nil {
		return pairs
	}

	r := report.Result
	row := schema.NewResultRow(*r)
	pairs = append(pairs,
		[]string{"Binned samples", strconv.Itoa(d.BinnedSamples)},
		[]string{"Cadence (d)", fmtPeriod(d.Cadence)},
		[]string{"Baseline (d)", fmtPeriod(d.Baseline)},
		[]string{"Teff", fmtOptional(row.EffectiveTemperature, fmtStellar)},
		[]string{"logg", fmtOptional(row.SurfaceGravity, fmtStellar)},
		[]string{"Tmag", fmtOptional(row.Magnitude, fmtStellar)},
		[]string{"P_LS (d)", fmtPeriod(row.SpectralPeriod)},
		[]string{"LS power", fmtMetric(row.SpectralPower)},
		[]string{"ACF peaks (d)", formatPeakLags(r.Autocorrelation.PeakLags)},
		[]string{"P_ACF (d)", orDash(fmtOptional(row.AutocorrelationPeriod, fmtPeriod))},
		[]string{"P_final (d)", fmtPeriod(row.FinalPeriod)},
		[]string{"Flag", flagText(row.Flag, useColors)},
		[]string{"Variability", fmtMetric(row.VariabilityMetric)},
		[]string{"Render", strconv.FormatBool(r.Render)},
	)
	if report.Plot != "" {
		pairs = append(pairs, []string{"Plot", report.Plot})
	}
	return pairs
}

// reconcilePairs lists the reconciliation fields in display order.
func reconcilePairs(report schema.ReconcileReport, useColors bool) [][]string {
	ratio := "-"
	if report.Ratio != nil {
		ratio = fmtMetric(*report.Ratio)
	}
	return [][]string{
		{"P_LS (d)", fmtPeriod(report.SpectralPeriod)},
		{"P_ACF (d)", orDash(fmtOptional(report.AutocorrelationPeriod, fmtPeriod))},
		{"P_ACF / P_LS", ratio},
		{"P_final (d)", fmtPeriod(report.Reconciled.FinalPeriod)},
		{"Flag", flagText(report.Reconciled.Flag, useColors)},
	}
}

// writeKeyValueTable renders two-column rows.
func writeKeyValueTable(w io.Writer, pairs [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	if err := table.Bulk(pairs); err != nil {
		return err
	}
	return table.Render()
}

// formatPeakLags lists accepted peak lags, or a dash when there are none.
func formatPeakLags(lags []float64) string {
	if len(lags) == 0 {
		return "-"
	}
	const shown = 5
	parts := make([]string, 0, min(len(lags), shown))
	for _, lag := range lags[:min(len(lags), shown)] {
		parts = append(parts, fmtPeriod(lag))
	}
	if len(lags) > shown {
		parts = append(parts, fmt.Sprintf("(+%d more)", len(lags)-shown))
	}
	return strings.Join(parts, " ")
}

func flagText(flag schema.Flag, useColors bool) string {
	if useColors {
		return contract.GetColorFlag(flag)
	}
	return contract.GetPlainFlag(flag)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
