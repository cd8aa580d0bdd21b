// Package sample loads the ordered list of stars to analyze from CSV or XLSX files.
package sample

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
	"github.com/xuri/excelize/v2"
)

// SchemaError reports a sample file whose columns cannot be mapped.
// It is the only batch error that aborts before any star is processed.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("sample schema error in %s: %s", e.Path, e.Reason)
}

// Mapping names the sample columns. IDColumns are aliases tried in order.
type Mapping struct {
	IDColumns  []string
	TeffColumn string
	LoggColumn string
	TmagColumn string
}

// MappingFromConfig builds the column mapping from the validated config.
func MappingFromConfig(cfg *contract.Config) Mapping {
	return Mapping{
		IDColumns:  cfg.IDColumns,
		TeffColumn: cfg.TeffColumn,
		LoggColumn: cfg.LoggColumn,
		TmagColumn: cfg.TmagColumn,
	}
}

// resolved holds the column indexes found in the header, -1 when absent.
type resolved struct {
	id, teff, logg, tmag int
}

// Load reads the stars in file order. The format is chosen by extension.
func Load(path string, mapping Mapping) ([]schema.Star, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readExcelRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	return parseRows(path, rows, mapping)
}

// ReadCSV parses stars from CSV content, for callers that already hold a reader.
func ReadCSV(name string, r io.Reader, mapping Mapping) ([]schema.Star, error) {
	rows, err := csvRows(name, r)
	if err != nil {
		return nil, err
	}
	return parseRows(name, rows, mapping)
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return csvRows(path, file)
}

func csvRows(name string, r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV sample %s: %w", name, err)
	}
	return rows, nil
}

// readExcelRows reads the first sheet of a workbook.
func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel sample: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &SchemaError{Path: path, Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func parseRows(path string, rows [][]string, mapping Mapping) ([]schema.Star, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Path: path, Reason: "missing header row"}
	}
	cols, err := resolveColumns(rows[0], mapping)
	if err != nil {
		return nil, &SchemaError{Path: path, Reason: err.Error()}
	}

	stars := make([]schema.Star, 0, len(rows)-1)
	blank := 0
	for _, row := range rows[1:] {
		id := NormalizeID(cell(row, cols.id))
		if id == "" {
			blank++
			continue
		}
		stars = append(stars, schema.Star{
			ID:   id,
			Teff: parseOptional(cell(row, cols.teff)),
			Logg: parseOptional(cell(row, cols.logg)),
			Tmag: parseOptional(cell(row, cols.tmag)),
		})
	}
	if blank > 0 {
		contract.LogWarn("sample load", fmt.Errorf("dropped %d rows with a blank identifier in %s", blank, path))
	}
	return stars, nil
}

// resolveColumns maps the header once. The first identifier alias present wins.
func resolveColumns(header []string, mapping Mapping) (resolved, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	lookup := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := index[name]; ok {
			return i
		}
		return -1
	}

	cols := resolved{id: -1}
	for _, alias := range mapping.IDColumns {
		if i := lookup(alias); i >= 0 {
			cols.id = i
			break
		}
	}
	if cols.id < 0 {
		return cols, fmt.Errorf("no identifier column found (tried %s)", strings.Join(mapping.IDColumns, ", "))
	}
	cols.teff = lookup(mapping.TeffColumn)
	cols.logg = lookup(mapping.LoggColumn)
	cols.tmag = lookup(mapping.TmagColumn)
	return cols, nil
}

// NormalizeID trims the identifier and renders integer-valued floats ("123.0") as integers.
func NormalizeID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || !strings.ContainsAny(id, ".eE") {
		return id
	}
	v, err := strconv.ParseFloat(id, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return id
	}
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return strconv.FormatInt(int64(v), 10)
	}
	return id
}

// IsSchemaError reports whether err carries a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseOptional returns nil for blank or non-numeric cells.
func parseOptional(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
