package schema

import "math"

// Output precision for exported tables.
const (
	PeriodPlaces = 4
	MetricPlaces = 6
)

// ResultColumns is the fixed column order of every exported table.
var ResultColumns = []string{
	"identifier",
	"effective_temperature",
	"surface_gravity",
	"magnitude",
	"spectral_period",
	"spectral_power",
	"autocorrelation_period",
	"final_period",
	"flag",
	"variability_metric",
}

// ResultRow is one exported table row with periods and metrics already rounded.
type ResultRow struct {
	Identifier            string   `json:"identifier"`
	EffectiveTemperature  *float64 `json:"effective_temperature"`
	SurfaceGravity        *float64 `json:"surface_gravity"`
	Magnitude             *float64 `json:"magnitude"`
	SpectralPeriod        float64  `json:"spectral_period"`
	SpectralPower         float64  `json:"spectral_power"`
	AutocorrelationPeriod *float64 `json:"autocorrelation_period"`
	FinalPeriod           float64  `json:"final_period"`
	Flag                  Flag     `json:"flag"`
	VariabilityMetric     float64  `json:"variability_metric"`
}

// NewResultRow projects a StarResult onto the export columns.
func NewResultRow(r StarResult) ResultRow {
	row := ResultRow{
		Identifier:           r.Star.ID,
		EffectiveTemperature: r.Star.Teff,
		SurfaceGravity:       r.Star.Logg,
		Magnitude:            r.Star.Tmag,
		SpectralPeriod:       Round(r.Spectral.Period, PeriodPlaces),
		SpectralPower:        Round(r.Spectral.Power, MetricPlaces),
		FinalPeriod:          Round(r.Reconciled.FinalPeriod, PeriodPlaces),
		Flag:                 r.Reconciled.Flag,
		VariabilityMetric:    Round(r.Variability, MetricPlaces),
	}
	if p := r.Autocorrelation.ChosenPeriod; p != nil {
		v := Round(*p, PeriodPlaces)
		row.AutocorrelationPeriod = &v
	}
	return row
}

// NewResultRows projects results in order.
func NewResultRows(results []StarResult) []ResultRow {
	rows := make([]ResultRow, len(results))
	for i, r := range results {
		rows[i] = NewResultRow(r)
	}
	return rows
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
