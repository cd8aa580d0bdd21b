// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteResults prints a batch summary using the configured output format.
func (ow *OutWriter) WriteResults(summary *schema.BatchSummary, cfg *contract.Config) error {
	return WriteBatchResults(summary, cfg)
}

// WriteEstimate prints a single-star report using the configured output format.
func (ow *OutWriter) WriteEstimate(report schema.EstimateReport, cfg *contract.Config) error {
	return WriteEstimateReport(report, cfg)
}

// WriteReconcile prints a reconciliation using the configured output format.
func (ow *OutWriter) WriteReconcile(report schema.ReconcileReport, cfg *contract.Config) error {
	return WriteReconcileReport(report, cfg)
}

// WriteInspection prints an inspection batch using the configured output format.
func (ow *OutWriter) WriteInspection(report schema.InspectionReport, cfg *contract.Config) error {
	return WriteInspectionReport(report, cfg)
}
