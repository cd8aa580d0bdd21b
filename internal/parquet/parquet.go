// Package parquet provides data structures and functions for reading and writing
// starspin results and light curves as Parquet using github.com/parquet-go/parquet-go.
package parquet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/huangsam/starspin/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single batch run with metadata.
// This struct maps to the starspin_runs database table.
type Run struct {
	// RunID is the UUID of this batch run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the batch began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the batch completed (nullable while running or after a crash)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// DurationMs is the wall time of the run in milliseconds (nullable)
	DurationMs *int64 `parquet:"duration_ms,optional,snappy"`

	Attempted int32 `parquet:"attempted,snappy"`
	Processed int32 `parquet:"processed,snappy"`
	Skipped   int32 `parquet:"skipped,snappy"`

	// ConfigParams contains the JSON-encoded engine configuration (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Result is one exported result row. Column order matches schema.ResultColumns.
type Result struct {
	Identifier            string   `parquet:"identifier,snappy"`
	EffectiveTemperature  *float64 `parquet:"effective_temperature,optional,snappy"`
	SurfaceGravity        *float64 `parquet:"surface_gravity,optional,snappy"`
	Magnitude             *float64 `parquet:"magnitude,optional,snappy"`
	SpectralPeriod        float64  `parquet:"spectral_period,snappy"`
	SpectralPower         float64  `parquet:"spectral_power,snappy"`
	AutocorrelationPeriod *float64 `parquet:"autocorrelation_period,optional,snappy"`
	FinalPeriod           float64  `parquet:"final_period,snappy"`
	Flag                  string   `parquet:"flag,snappy"`
	VariabilityMetric     float64  `parquet:"variability_metric,snappy"`
}

// StoredResult is a result row with its run bookkeeping, for results export.
type StoredResult struct {
	RunID      string    `parquet:"run_id,snappy"`
	Position   int32     `parquet:"position,snappy"`
	RecordedAt time.Time `parquet:"recorded_at,snappy"`

	Identifier            string   `parquet:"identifier,snappy"`
	EffectiveTemperature  *float64 `parquet:"effective_temperature,optional,snappy"`
	SurfaceGravity        *float64 `parquet:"surface_gravity,optional,snappy"`
	Magnitude             *float64 `parquet:"magnitude,optional,snappy"`
	SpectralPeriod        float64  `parquet:"spectral_period,snappy"`
	SpectralPower         float64  `parquet:"spectral_power,snappy"`
	AutocorrelationPeriod *float64 `parquet:"autocorrelation_period,optional,snappy"`
	FinalPeriod           float64  `parquet:"final_period,snappy"`
	Flag                  string   `parquet:"flag,snappy"`
	VariabilityMetric     float64  `parquet:"variability_metric,snappy"`
}

// StoredSkip is a skipped star with its run bookkeeping.
type StoredSkip struct {
	RunID      string    `parquet:"run_id,snappy"`
	Position   int32     `parquet:"position,snappy"`
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
	StarID     string    `parquet:"star_id,snappy"`
	Kind       string    `parquet:"kind,snappy"`
	Reason     string    `parquet:"reason,snappy"`
}

// LightCurvePoint is one light curve sample. Files written by external fetchers
// use the same column names.
type LightCurvePoint struct {
	Time    float64  `parquet:"time"`
	Flux    float64  `parquet:"flux"`
	FluxErr *float64 `parquet:"flux_err,optional"`
}

// Write writes rows to w as a single Parquet file.
func Write[T any](w io.Writer, rows []T) error {
	// The schema is automatically derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Read reads every row from a Parquet source.
func Read[T any](input io.ReaderAt) ([]T, error) {
	reader := parquet.NewGenericReader[T](input)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}

// ReadFile reads every row from the Parquet file at path.
func ReadFile[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return Read[T](file)
}

// ConvertResultRows converts export rows for Parquet output.
func ConvertResultRows(rows []schema.ResultRow) []Result {
	result := make([]Result, len(rows))
	for i, row := range rows {
		result[i] = Result{
			Identifier:            row.Identifier,
			EffectiveTemperature:  row.EffectiveTemperature,
			SurfaceGravity:        row.SurfaceGravity,
			Magnitude:             row.Magnitude,
			SpectralPeriod:        row.SpectralPeriod,
			SpectralPower:         row.SpectralPower,
			AutocorrelationPeriod: row.AutocorrelationPeriod,
			FinalPeriod:           row.FinalPeriod,
			Flag:                  string(row.Flag),
			VariabilityMetric:     row.VariabilityMetric,
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:        record.RunID,
			StartTime:    record.StartTime,
			EndTime:      record.EndTime,
			DurationMs:   record.DurationMs,
			Attempted:    record.Attempted,
			Processed:    record.Processed,
			Skipped:      record.Skipped,
			ConfigParams: record.ConfigParams,
		}
	}
	return result
}

// ConvertStarResultRecords converts stored results for Parquet export.
func ConvertStarResultRecords(records []schema.StarResultRecord) []StoredResult {
	result := make([]StoredResult, len(records))
	for i, record := range records {
		row := record.ResultRow
		result[i] = StoredResult{
			RunID:                 record.RunID,
			Position:              record.Position,
			RecordedAt:            record.RecordedAt,
			Identifier:            row.Identifier,
			EffectiveTemperature:  row.EffectiveTemperature,
			SurfaceGravity:        row.SurfaceGravity,
			Magnitude:             row.Magnitude,
			SpectralPeriod:        row.SpectralPeriod,
			SpectralPower:         row.SpectralPower,
			AutocorrelationPeriod: row.AutocorrelationPeriod,
			FinalPeriod:           row.FinalPeriod,
			Flag:                  string(row.Flag),
			VariabilityMetric:     row.VariabilityMetric,
		}
	}
	return result
}

// ConvertSkipRecords converts stored skips for Parquet export.
func ConvertSkipRecords(records []schema.SkipRecordRow) []StoredSkip {
	result := make([]StoredSkip, len(records))
	for i, record := range records {
		result[i] = StoredSkip{
			RunID:      record.RunID,
			Position:   record.Position,
			RecordedAt: record.RecordedAt,
			StarID:     record.StarID,
			Kind:       string(record.Kind),
			Reason:     record.Reason,
		}
	}
	return result
}

// FromTimeSeries flattens a light curve into Parquet rows.
func FromTimeSeries(ts *schema.TimeSeries) []LightCurvePoint {
	points := make([]LightCurvePoint, ts.Len())
	hasErr := ts.HasErrors()
	for i := range points {
		points[i] = LightCurvePoint{Time: ts.Time[i], Flux: ts.Flux[i]}
		if hasErr {
			e := ts.FluxErr[i]
			points[i].FluxErr = &e
		}
	}
	return points
}

// ToTimeSeries rebuilds a light curve. Uncertainties are kept only when at least one row has one;
// rows without an uncertainty then carry NaN.
func ToTimeSeries(points []LightCurvePoint) *schema.TimeSeries {
	ts := &schema.TimeSeries{
		Time: make([]float64, len(points)),
		Flux: make([]float64, len(points)),
	}
	var errs []float64
	for i, p := range points {
		ts.Time[i] = p.Time
		ts.Flux[i] = p.Flux
		if p.FluxErr != nil && errs == nil {
			errs = make([]float64, len(points))
			for j := range errs {
				errs[j] = math.NaN()
			}
		}
		if errs != nil && p.FluxErr != nil {
			errs[i] = *p.FluxErr
		}
	}
	ts.FluxErr = errs
	return ts
}

// EncodeLightCurve serializes a light curve to Parquet bytes. NaN samples survive the round trip.
func EncodeLightCurve(ts *schema.TimeSeries) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, FromTimeSeries(ts)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeLightCurve parses bytes produced by EncodeLightCurve.
func DecodeLightCurve(data []byte) (*schema.TimeSeries, error) {
	points, err := Read[LightCurvePoint](bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return ToTimeSeries(points), nil
}

// ReadLightCurveFile loads a light curve stored as Parquet.
func ReadLightCurveFile(path string) (*schema.TimeSeries, error) {
	points, err := ReadFile[LightCurvePoint](path)
	if err != nil {
		return nil, err
	}
	return ToTimeSeries(points), nil
}
