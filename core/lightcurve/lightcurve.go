// Package lightcurve cleans, normalizes and bins light curves before period search.
package lightcurve

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/starspin/schema"
	"github.com/montanaflynn/stats"
)

// Preprocessing errors. ErrInsufficientSamples is a normal per-star skip; the others are failures.
var (
	ErrInsufficientSamples = errors.New("insufficient samples")
	ErrMalformedSeries     = errors.New("malformed light curve")
	ErrBadNormalization    = errors.New("median flux is zero or not finite")
)

// Preprocess runs clean, normalize and bin in that order.
// It returns ErrInsufficientSamples when fewer than cfg.MinSamples samples survive
// cleaning or binning.
func Preprocess(raw *schema.TimeSeries, cfg schema.EngineConfig) (*schema.TimeSeries, error) {
	if cfg.BinWidth <= 0 || math.IsNaN(cfg.BinWidth) {
		return nil, fmt.Errorf("%w: bin width must be positive (got %v)", ErrMalformedSeries, cfg.BinWidth)
	}

	cleaned, err := Clean(raw)
	if err != nil {
		return nil, err
	}
	if cleaned.Len() < cfg.MinSamples {
		return nil, fmt.Errorf("%w: %d valid samples, need %d", ErrInsufficientSamples, cleaned.Len(), cfg.MinSamples)
	}

	normalized, err := Normalize(cleaned)
	if err != nil {
		return nil, err
	}

	binned := Bin(normalized, cfg.BinWidth)
	if binned.Len() < cfg.MinSamples {
		return nil, fmt.Errorf("%w: %d bins of %.4f d, need %d", ErrInsufficientSamples, binned.Len(), cfg.BinWidth, cfg.MinSamples)
	}
	return binned, nil
}

// Clean drops samples whose time or flux is not finite and returns the rest sorted by time.
// A non-finite uncertainty is kept as NaN so it is ignored during binning.
func Clean(raw *schema.TimeSeries) (*schema.TimeSeries, error) {
	if raw == nil {
		return &schema.TimeSeries{}, nil
	}
	if len(raw.Time) != len(raw.Flux) {
		return nil, fmt.Errorf("%w: %d times but %d fluxes", ErrMalformedSeries, len(raw.Time), len(raw.Flux))
	}
	hasErr := len(raw.FluxErr) > 0
	if hasErr && len(raw.FluxErr) != len(raw.Time) {
		return nil, fmt.Errorf("%w: %d times but %d uncertainties", ErrMalformedSeries, len(raw.Time), len(raw.FluxErr))
	}

	keep := make([]int, 0, len(raw.Time))
	for i := range raw.Time {
		if isFinite(raw.Time[i]) && isFinite(raw.Flux[i]) {
			keep = append(keep, i)
		}
	}
	slices.SortStableFunc(keep, func(a, b int) int {
		switch {
		case raw.Time[a] < raw.Time[b]:
			return -1
		case raw.Time[a] > raw.Time[b]:
			return 1
		default:
			return 0
		}
	})

	out := &schema.TimeSeries{
		Time: make([]float64, len(keep)),
		Flux: make([]float64, len(keep)),
	}
	if hasErr {
		out.FluxErr = make([]float64, len(keep))
	}
	for j, i := range keep {
		out.Time[j] = raw.Time[i]
		out.Flux[j] = raw.Flux[i]
		if hasErr {
			out.FluxErr[j] = raw.FluxErr[i]
			if !isFinite(out.FluxErr[j]) {
				out.FluxErr[j] = math.NaN()
			}
		}
	}
	return out, nil
}

// Normalize divides flux and uncertainty by the median flux.
func Normalize(ts *schema.TimeSeries) (*schema.TimeSeries, error) {
	median, err := stats.Median(ts.Flux)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientSamples, err)
	}
	if median == 0 || !isFinite(median) {
		return nil, fmt.Errorf("%w (median=%v)", ErrBadNormalization, median)
	}

	out := &schema.TimeSeries{
		Time: slices.Clone(ts.Time),
		Flux: make([]float64, len(ts.Flux)),
	}
	for i, f := range ts.Flux {
		out.Flux[i] = f / median
	}
	if ts.HasErrors() {
		out.FluxErr = make([]float64, len(ts.FluxErr))
		for i, e := range ts.FluxErr {
			out.FluxErr[i] = e / math.Abs(median)
		}
	}
	return out, nil
}

// Bin groups a time-sorted series into contiguous bins of the given width starting at the
// first sample. Bins are closed on the left, and a sample within binEdgeTolerance of an edge
// belongs to the bin starting there, so large absolute times such as BTJD do not move samples
// across edges. Each non-empty bin becomes one sample at the bin midpoint with the mean flux.
// The uncertainty is the quadrature sum of finite member uncertainties divided by their count.
func Bin(ts *schema.TimeSeries, width float64) *schema.TimeSeries {
	out := &schema.TimeSeries{}
	if ts.Len() == 0 || width <= 0 {
		return out
	}
	hasErr := ts.HasErrors()
	if hasErr {
		out.FluxErr = []float64{}
	}

	t0 := ts.Time[0]
	var (
		current  = -1
		fluxSum  float64
		count    int
		errSq    float64
		errCount int
	)
	flush := func() {
		if count == 0 {
			return
		}
		out.Time = append(out.Time, t0+(float64(current)+0.5)*width)
		out.Flux = append(out.Flux, fluxSum/float64(count))
		if hasErr {
			if errCount > 0 {
				out.FluxErr = append(out.FluxErr, math.Sqrt(errSq)/float64(errCount))
			} else {
				out.FluxErr = append(out.FluxErr, math.NaN())
			}
		}
	}

	for i, t := range ts.Time {
		idx := binIndex(t-t0, width)
		if idx != current {
			flush()
			current = idx
			fluxSum, count, errSq, errCount = 0, 0, 0, 0
		}
		fluxSum += ts.Flux[i]
		count++
		if hasErr && isFinite(ts.FluxErr[i]) {
			errSq += ts.FluxErr[i] * ts.FluxErr[i]
			errCount++
		}
	}
	flush()
	return out
}

// binEdgeTolerance is how close to an edge, in bin widths, a sample snaps onto it.
const binEdgeTolerance = 1e-9

// binIndex returns the bin holding a sample offset from the first sample.
func binIndex(offset, width float64) int {
	x := offset / width
	if r := math.Round(x); math.Abs(x-r) < binEdgeTolerance {
		return int(r)
	}
	return int(math.Floor(x))
}

// Cadence returns the median spacing between consecutive samples.
func Cadence(ts *schema.TimeSeries) schema.CadenceStats {
	if ts.Len() < 2 {
		return schema.CadenceStats{}
	}
	diffs := make([]float64, ts.Len()-1)
	for i := 1; i < ts.Len(); i++ {
		diffs[i-1] = ts.Time[i] - ts.Time[i-1]
	}
	median, err := stats.Median(diffs)
	if err != nil {
		return schema.CadenceStats{}
	}
	return schema.CadenceStats{Median: median}
}

// Variability returns the population standard deviation of the flux.
func Variability(ts *schema.TimeSeries) float64 {
	if ts.Len() == 0 {
		return 0
	}
	sd, err := stats.StandardDeviationPopulation(ts.Flux)
	if err != nil {
		return 0
	}
	return sd
}

// Fold maps each sample time to its phase in [0, 1) for the given period.
func Fold(ts *schema.TimeSeries, period float64) []float64 {
	phases := make([]float64, ts.Len())
	if period <= 0 || ts.Len() == 0 {
		return phases
	}
	epoch := ts.Time[0]
	for i, t := range ts.Time {
		p := math.Mod((t-epoch)/period, 1)
		if p < 0 {
			p++
		}
		phases[i] = p
	}
	return phases
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
