package period

import (
	"fmt"
	"slices"

	"github.com/huangsam/starspin/core/lightcurve"
	"github.com/huangsam/starspin/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Autocorrelate returns the autocorrelation of the mean-subtracted flux at lags 0..n-1,
// normalized so that lag 0 is exactly 1.
func Autocorrelate(flux []float64) ([]float64, error) {
	n := len(flux)
	if n == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrFlatSeries)
	}
	mean := stat.Mean(flux, nil)
	y := make([]float64, n)
	for i, f := range flux {
		y[i] = f - mean
	}

	zero := floats.Dot(y, y)
	if zero == 0 {
		return nil, ErrFlatSeries
	}
	acf := make([]float64, n)
	acf[0] = 1
	for k := 1; k < n; k++ {
		acf[k] = floats.Dot(y[:n-k], y[k:]) / zero
	}
	return acf, nil
}

// FindPeaks returns indices of strict local maxima with value >= height, thinned so that
// kept peaks are at least distance samples apart. Flat plateaus resolve to their middle
// sample (rounded down) and the endpoints never qualify. When peaks compete, the taller
// one is kept; among equal heights the later index wins.
func FindPeaks(x []float64, height float64, distance int) []int {
	var peaks []int
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if x[i-1] >= x[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			mid := (i + ahead - 1) / 2
			if x[mid] >= height {
				peaks = append(peaks, mid)
			}
			i = ahead
		}
	}

	if distance <= 1 || len(peaks) < 2 {
		return peaks
	}

	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case x[peaks[a]] < x[peaks[b]]:
			return -1
		case x[peaks[a]] > x[peaks[b]]:
			return 1
		default:
			return 0
		}
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for i := len(order) - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	kept := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if keep[i] {
			kept = append(kept, p)
		}
	}
	return kept
}

// EstimateAutocorrelation computes the normalized ACF of a binned series and picks the
// smallest accepted peak lag beyond cfg.ACFMinLag. ChosenPeriod stays nil when none qualifies.
func EstimateAutocorrelation(ts *schema.TimeSeries, cfg schema.EngineConfig) (schema.AutocorrelationEstimate, error) {
	cadence := lightcurve.Cadence(ts)
	if cadence.Median <= 0 {
		return schema.AutocorrelationEstimate{}, fmt.Errorf("%w: cadence is %v", ErrFlatSeries, cadence.Median)
	}
	acf, err := Autocorrelate(ts.Flux)
	if err != nil {
		return schema.AutocorrelationEstimate{}, err
	}

	lags := make([]float64, len(acf))
	for k := range lags {
		lags[k] = float64(k) * cadence.Median
	}

	est := schema.AutocorrelationEstimate{Lags: lags, Correlation: acf}
	for _, p := range FindPeaks(acf, cfg.ACFMinHeight, cfg.ACFMinDistance) {
		if lags[p] > cfg.ACFMinLag {
			est.PeakLags = append(est.PeakLags, lags[p])
		}
	}
	if len(est.PeakLags) > 0 {
		chosen := est.PeakLags[0]
		est.ChosenPeriod = &chosen
	}
	return est, nil
}
