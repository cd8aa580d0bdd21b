// Package period estimates rotation periods from preprocessed light curves and
// reconciles the spectral and autocorrelation estimates.
package period

import (
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/starspin/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Estimation errors. Both are per-star processing failures.
var (
	ErrFlatSeries  = errors.New("light curve has no variance")
	ErrEmptySearch = errors.New("period search range is empty")
)

// FrequencyGrid returns the uniform frequency grid in cycles per day covering periods in
// (minPeriod, maxPeriod]. The step is 1/(baseline*oversample).
func FrequencyGrid(baseline, minPeriod, maxPeriod, oversample float64) ([]float64, error) {
	if baseline <= 0 {
		return nil, fmt.Errorf("%w: zero baseline", ErrFlatSeries)
	}
	if minPeriod <= 0 || maxPeriod <= minPeriod {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrEmptySearch, minPeriod, maxPeriod)
	}
	if oversample <= 0 {
		oversample = schema.DefaultOversample
	}

	fmin := 1 / maxPeriod
	fmax := 1 / minPeriod
	df := 1 / (baseline * oversample)

	n := int(math.Ceil((fmax - fmin) / df))
	grid := make([]float64, 0, n)
	for k := 0; ; k++ {
		f := fmin + float64(k)*df
		if f >= fmax {
			break
		}
		grid = append(grid, f)
	}
	if len(grid) == 0 {
		return nil, ErrEmptySearch
	}
	return grid, nil
}

// LombScargle evaluates the classic mean-subtracted periodogram at each frequency.
// Power is in amplitude units, sqrt(4*psd/N), so a sinusoid of amplitude A in relative flux
// peaks near A.
func LombScargle(ts *schema.TimeSeries, freqs []float64) ([]float64, error) {
	n := ts.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: %d samples", ErrFlatSeries, n)
	}

	mean := stat.Mean(ts.Flux, nil)
	y := make([]float64, n)
	for i, f := range ts.Flux {
		y[i] = f - mean
	}
	yy := floats.Dot(y, y)
	if yy == 0 {
		return nil, ErrFlatSeries
	}

	c := make([]float64, n)
	s := make([]float64, n)
	power := make([]float64, len(freqs))
	for j, f := range freqs {
		omega := 2 * math.Pi * f

		var s2, c2 float64
		for _, t := range ts.Time {
			s2 += math.Sin(2 * omega * t)
			c2 += math.Cos(2 * omega * t)
		}
		tau := math.Atan2(s2, c2) / (2 * omega)

		for i, t := range ts.Time {
			arg := omega * (t - tau)
			c[i] = math.Cos(arg)
			s[i] = math.Sin(arg)
		}

		var p float64
		if cc := floats.Dot(c, c); cc > 0 {
			yc := floats.Dot(y, c)
			p += yc * yc / cc
		}
		if ss := floats.Dot(s, s); ss > 0 {
			ys := floats.Dot(y, s)
			p += ys * ys / ss
		}
		// psd = p/2
		power[j] = math.Sqrt(2 * p / float64(n))
	}
	return power, nil
}

// EstimateSpectral returns the period of maximum periodogram power within the configured bounds.
func EstimateSpectral(ts *schema.TimeSeries, cfg schema.EngineConfig) (schema.SpectralEstimate, error) {
	freqs, err := FrequencyGrid(ts.Baseline(), cfg.MinPeriod, cfg.MaxPeriod, cfg.Oversample)
	if err != nil {
		return schema.SpectralEstimate{}, err
	}
	power, err := LombScargle(ts, freqs)
	if err != nil {
		return schema.SpectralEstimate{}, err
	}

	best := floats.MaxIdx(power)
	return schema.SpectralEstimate{
		Period: 1 / freqs[best],
		Power:  power[best],
	}, nil
}
