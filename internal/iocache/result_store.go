package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
)

// Table names for batch result tracking.
const (
	runsTable    = "starspin_runs"
	resultsTable = "starspin_star_results"
	skipsTable   = "starspin_star_skips"
)

// resultTables lists the result store tables in creation order.
var resultTables = []string{runsTable, resultsTable, skipsTable}

const resultColumns = `run_id, star_index, recorded_at, identifier, effective_temperature, surface_gravity,
	magnitude, spectral_period, spectral_power, autocorrelation_period, final_period, flag, variability_metric`

// ResultStoreImpl implements the ResultStore interface.
// Timestamps are stored as Unix milliseconds on every backend.
type ResultStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.ResultStore = &ResultStoreImpl{} // Compile-time check

// NewResultStore creates a new ResultStore with the specified backend.
func NewResultStore(backend schema.DatabaseBackend, connStr string) (contract.ResultStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &ResultStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetResultDBFilePath())
	if err != nil {
		return nil, err
	}

	// Create the table schemas
	if err := createResultTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create result tables: %w", err)
	}

	return &ResultStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// createResultTables creates the result tracking tables.
func createResultTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range resultTables {
		if _, err := db.Exec(getCreateResultTableQuery(table, backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateResultTableQuery returns the CREATE TABLE query for one result table.
func getCreateResultTableQuery(table string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(table, backend)

	text, double, idType := "TEXT", "REAL", "TEXT"
	switch backend {
	case schema.MySQLBackend:
		text, double, idType = "TEXT", "DOUBLE", "VARCHAR(64)"
	case schema.PostgreSQLBackend:
		text, double, idType = "TEXT", "DOUBLE PRECISION", "VARCHAR(64)"
	}

	switch table {
	case runsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s NOT NULL PRIMARY KEY,
				start_time BIGINT NOT NULL,
				end_time BIGINT,
				duration_ms BIGINT,
				attempted INTEGER NOT NULL DEFAULT 0,
				processed INTEGER NOT NULL DEFAULT 0,
				skipped INTEGER NOT NULL DEFAULT 0,
				config_params %s
			);
		`, quoted, idType, text)

	case resultsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s NOT NULL,
				star_index INTEGER NOT NULL,
				recorded_at BIGINT NOT NULL,
				identifier %s NOT NULL,
				effective_temperature %s,
				surface_gravity %s,
				magnitude %s,
				spectral_period %s NOT NULL,
				spectral_power %s NOT NULL,
				autocorrelation_period %s,
				final_period %s NOT NULL,
				flag VARCHAR(32) NOT NULL,
				variability_metric %s NOT NULL,
				PRIMARY KEY (run_id, star_index)
			);
		`, quoted, idType, idType, double, double, double, double, double, double, double, double)

	default: // skipsTable
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s NOT NULL,
				star_index INTEGER NOT NULL,
				recorded_at BIGINT NOT NULL,
				star_id %s NOT NULL,
				kind VARCHAR(32) NOT NULL,
				reason %s,
				PRIMARY KEY (run_id, star_index)
			);
		`, quoted, idType, idType, text)
	}
}

// BeginRun records the start of a batch run.
func (rs *ResultStoreImpl) BeginRun(runID string, startTime time.Time, configParams map[string]any) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return fmt.Errorf("failed to marshal config params: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, start_time, config_params) VALUES (%s)`,
		quoteTableName(runsTable, rs.backend), placeholders(rs.backend, 1, 3))
	if _, err := rs.db.Exec(query, runID, startTime.UnixMilli(), string(configJSON)); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *ResultStoreImpl) EndRun(runID string, endTime time.Time, attempted, processed, skipped int) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quoted := quoteTableName(runsTable, rs.backend)

	// First, get the start_time to calculate duration
	var startMs int64
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholders(rs.backend, 1, 1))
	if err := rs.db.QueryRow(query, runID).Scan(&startMs); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	durationMs := endTime.UnixMilli() - startMs

	var updateQuery string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, duration_ms = $2, attempted = $3, processed = $4, skipped = $5 WHERE run_id = $6`, quoted)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, duration_ms = ?, attempted = ?, processed = ?, skipped = ? WHERE run_id = ?`, quoted)
	}
	if _, err := rs.db.Exec(updateQuery, endTime.UnixMilli(), durationMs, attempted, processed, skipped, runID); err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	return nil
}

// RecordResult stores one exported row at its input position.
func (rs *ResultStoreImpl) RecordResult(runID string, position int, row schema.ResultRow) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(resultsTable, rs.backend), resultColumns, placeholders(rs.backend, 1, 13))
	args := []any{
		runID, position, time.Now().UnixMilli(), row.Identifier,
		row.EffectiveTemperature, row.SurfaceGravity, row.Magnitude,
		row.SpectralPeriod, row.SpectralPower, row.AutocorrelationPeriod,
		row.FinalPeriod, string(row.Flag), row.VariabilityMetric,
	}
	if _, err := rs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert result for %s: %w", row.Identifier, err)
	}
	return nil
}

// RecordSkip stores one skipped star at its input position.
func (rs *ResultStoreImpl) RecordSkip(runID string, position int, skip schema.SkipRecord) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, star_index, recorded_at, star_id, kind, reason) VALUES (%s)`,
		quoteTableName(skipsTable, rs.backend), placeholders(rs.backend, 1, 6))
	if _, err := rs.db.Exec(query, runID, position, time.Now().UnixMilli(), skip.StarID, string(skip.Kind), skip.Reason); err != nil {
		return fmt.Errorf("failed to insert skip for %s: %w", skip.StarID, err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *ResultStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the result store.
func (rs *ResultStoreImpl) GetStatus() (schema.ResultStatus, error) {
	status := schema.ResultStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		var lastMs, oldestMs int64
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC, run_id DESC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &lastMs); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = time.UnixMilli(lastMs)

		// Get oldest run time
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT MIN(start_time) FROM %s", quotedRuns)).Scan(&oldestMs); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = time.UnixMilli(oldestMs)
	}

	// Get table sizes
	for _, table := range resultTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalResults = int(status.TableSizes[resultsTable])
	status.TotalSkips = int(status.TableSizes[skipsTable])

	return status, nil
}

// GetAllRuns retrieves all runs ordered by start time.
func (rs *ResultStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, duration_ms, attempted, processed, skipped, config_params
		FROM %s ORDER BY start_time, run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var startMs int64
		var endMs *int64
		if err := rows.Scan(&record.RunID, &startMs, &endMs, &record.DurationMs,
			&record.Attempted, &record.Processed, &record.Skipped, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.StartTime = time.UnixMilli(startMs)
		if endMs != nil {
			end := time.UnixMilli(*endMs)
			record.EndTime = &end
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllResults retrieves all stored results ordered by run and input position.
func (rs *ResultStoreImpl) GetAllResults() ([]schema.StarResultRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT r.run_id, r.star_index, r.recorded_at, r.identifier, r.effective_temperature, r.surface_gravity,
		r.magnitude, r.spectral_period, r.spectral_power, r.autocorrelation_period, r.final_period, r.flag, r.variability_metric
		FROM %s r JOIN %s u ON u.run_id = r.run_id ORDER BY u.start_time, r.run_id, r.star_index`,
		quoteTableName(resultsTable, rs.backend), quoteTableName(runsTable, rs.backend))
	return rs.queryResults(query)
}

// GetRunResults retrieves the results of one run ordered by input position.
func (rs *ResultStoreImpl) GetRunResults(runID string) ([]schema.StarResultRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE run_id = %s ORDER BY star_index`,
		resultColumns, quoteTableName(resultsTable, rs.backend), placeholders(rs.backend, 1, 1))
	return rs.queryResults(query, runID)
}

// queryResults scans result rows selected in resultColumns order.
func (rs *ResultStoreImpl) queryResults(query string, args ...any) ([]schema.StarResultRecord, error) {
	rows, err := rs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.StarResultRecord
	for rows.Next() {
		var record schema.StarResultRecord
		var recordedMs int64
		row := &record.ResultRow
		if err := rows.Scan(&record.RunID, &record.Position, &recordedMs, &row.Identifier,
			&row.EffectiveTemperature, &row.SurfaceGravity, &row.Magnitude,
			&row.SpectralPeriod, &row.SpectralPower, &row.AutocorrelationPeriod,
			&row.FinalPeriod, &row.Flag, &row.VariabilityMetric); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		record.RecordedAt = time.UnixMilli(recordedMs)
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}
	return results, nil
}

// GetAllSkips retrieves all stored skips ordered by run and input position.
func (rs *ResultStoreImpl) GetAllSkips() ([]schema.SkipRecordRow, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT s.run_id, s.star_index, s.recorded_at, s.star_id, s.kind, s.reason
		FROM %s s JOIN %s u ON u.run_id = s.run_id ORDER BY u.start_time, s.run_id, s.star_index`,
		quoteTableName(skipsTable, rs.backend), quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query skips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SkipRecordRow
	for rows.Next() {
		var record schema.SkipRecordRow
		var recordedMs int64
		var reason sql.NullString
		if err := rows.Scan(&record.RunID, &record.Position, &recordedMs, &record.StarID, &record.Kind, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan skip: %w", err)
		}
		record.RecordedAt = time.UnixMilli(recordedMs)
		record.Reason = reason.String
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skips: %w", err)
	}
	return results, nil
}
