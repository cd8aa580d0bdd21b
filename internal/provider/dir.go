package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/internal/parquet"
	"github.com/huangsam/starspin/schema"
)

// DirProvider reads light curves that were downloaded ahead of time into a directory.
// For a star it tries <id>_s<sector>.csv, <id>_s<sector>.parquet, <id>.csv and <id>.parquet
// in that order; a missing file means no data.
type DirProvider struct {
	Dir string
}

var _ contract.LightCurveProvider = &DirProvider{} // Compile-time check

// NewDirProvider creates a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{Dir: dir}
}

// Fetch implements the LightCurveProvider interface.
func (p *DirProvider) Fetch(ctx context.Context, query schema.LightCurveQuery) (*schema.TimeSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, path := range p.Candidates(query) {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			continue
		}
		ts, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read light curve %s: %w", path, err)
		}
		return ts, nil
	}
	return nil, nil
}

// Candidates lists the paths tried for a query, most specific first.
func (p *DirProvider) Candidates(query schema.LightCurveQuery) []string {
	id := filepath.Base(query.StarID)
	var names []string
	if query.Sector > 0 {
		names = append(names,
			fmt.Sprintf("%s_s%d.csv", id, query.Sector),
			fmt.Sprintf("%s_s%d.parquet", id, query.Sector))
	}
	names = append(names, id+".csv", id+".parquet")

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(p.Dir, name)
	}
	return paths
}

func readFile(path string) (*schema.TimeSeries, error) {
	if filepath.Ext(path) == ".parquet" {
		ts, err := parquet.ReadLightCurveFile(path)
		if err != nil || ts.Len() == 0 {
			return nil, err
		}
		return ts, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return ParseCSV(file)
}
