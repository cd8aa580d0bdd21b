// Package provider retrieves light curves for stars from local files or an external fetcher.
package provider

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
)

// Column aliases accepted in light curve CSV files, matched case-insensitively.
var (
	timeColumns    = []string{"time", "btjd", "bjd"}
	fluxColumns    = []string{"flux", "pdcsap_flux", "sap_flux"}
	fluxErrColumns = []string{"flux_err", "pdcsap_flux_err", "sap_flux_err"}
)

// ErrMissingColumn reports a light curve CSV without a time or flux column.
var ErrMissingColumn = errors.New("light curve is missing a required column")

// New builds the provider selected by the config, wrapped in the cache when one is given.
func New(cfg *contract.Config, store contract.CacheStore) (contract.LightCurveProvider, error) {
	var base contract.LightCurveProvider
	switch cfg.Provider {
	case schema.DirProvider:
		base = NewDirProvider(cfg.DataDir)
	case schema.CommandProvider:
		cmd, err := NewCommandProvider(cfg.FetchCommand)
		if err != nil {
			return nil, err
		}
		base = cmd
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if store == nil {
		return base, nil
	}
	return NewCachedProvider(base, store, cfg.CacheTTL), nil
}

// ParseCSV reads a light curve from CSV with a header row. A file with a header
// but no samples yields nil, which callers treat as no data. Unparseable flux
// cells become NaN so preprocessing drops them.
func ParseCSV(r io.Reader) (*schema.TimeSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read light curve header: %w", err)
	}

	timeIdx := findColumn(header, timeColumns)
	fluxIdx := findColumn(header, fluxColumns)
	errIdx := findColumn(header, fluxErrColumns)
	if timeIdx < 0 {
		return nil, fmt.Errorf("%w: time (tried %s)", ErrMissingColumn, strings.Join(timeColumns, ", "))
	}
	if fluxIdx < 0 {
		return nil, fmt.Errorf("%w: flux (tried %s)", ErrMissingColumn, strings.Join(fluxColumns, ", "))
	}

	ts := &schema.TimeSeries{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read light curve line %d: %w", line, err)
		}
		ts.Time = append(ts.Time, parseFloat(field(record, timeIdx)))
		ts.Flux = append(ts.Flux, parseFloat(field(record, fluxIdx)))
		if errIdx >= 0 {
			ts.FluxErr = append(ts.FluxErr, parseFloat(field(record, errIdx)))
		}
	}
	if ts.Len() == 0 {
		return nil, nil
	}
	return ts, nil
}

func findColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), alias) {
				return i
			}
		}
	}
	return -1
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
