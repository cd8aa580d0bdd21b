// Package render draws phase-folded diagnostic plots for stars that pass the variability gate.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/huangsam/starspin/core/lightcurve"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Plot geometry.
const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 4 * vg.Inch
	dotRadius  = 1.2
)

var (
	foldColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	halfFoldColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// FoldRenderer draws the binned light curve folded at the final period and at half of it,
// side by side, and stores the PNG through an artifact sink.
type FoldRenderer struct {
	sink contract.ArtifactSink
}

var _ contract.Renderer = &FoldRenderer{} // Compile-time check

// NewFoldRenderer creates a renderer writing to sink.
func NewFoldRenderer(sink contract.ArtifactSink) *FoldRenderer {
	return &FoldRenderer{sink: sink}
}

// Render implements the Renderer interface.
func (r *FoldRenderer) Render(ctx context.Context, result schema.StarResult, binned *schema.TimeSeries) (string, error) {
	if binned.Len() == 0 {
		return "", errors.New("no samples to plot")
	}
	period := result.Reconciled.FinalPeriod
	if period <= 0 {
		return "", fmt.Errorf("cannot fold at period %v", period)
	}

	data, err := DrawFold(result, binned)
	if err != nil {
		return "", err
	}
	return r.sink.Put(ctx, FileName(result.Star.ID, result.Reconciled.Flag), "image/png", data)
}

// FileName is the artifact name for a star's fold plot.
func FileName(id string, flag schema.Flag) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, id)
	return fmt.Sprintf("%s_%s_fold.png", safe, flag)
}

// DrawFold returns the PNG bytes of the two fold panels.
func DrawFold(result schema.StarResult, binned *schema.TimeSeries) ([]byte, error) {
	period := result.Reconciled.FinalPeriod

	full, err := foldPanel(binned, period, foldColor,
		fmt.Sprintf("%s  P = %.4f d (%s)", result.Star.ID, period, result.Reconciled.Flag))
	if err != nil {
		return nil, err
	}
	half, err := foldPanel(binned, period/2, halfFoldColor,
		fmt.Sprintf("P/2 = %.4f d", period/2))
	if err != nil {
		return nil, err
	}

	img := vgimg.New(plotWidth, plotHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: 2,
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{{full, half}}, tiles, dc)
	full.Draw(canvases[0][0])
	half.Draw(canvases[0][1])

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode plot: %w", err)
	}
	return buf.Bytes(), nil
}

// foldPanel scatters normalized flux against phase.
func foldPanel(ts *schema.TimeSeries, period float64, c color.Color, title string) (*plot.Plot, error) {
	phases := lightcurve.Fold(ts, period)
	pts := make(plotter.XYs, len(phases))
	for i, phase := range phases {
		pts[i].X = phase
		pts[i].Y = ts.Flux[i]
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyle.Color = c
	scatter.GlyphStyle.Radius = vg.Points(dotRadius)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Phase"
	p.Y.Label.Text = "Normalized flux"
	p.X.Min, p.X.Max = 0, 1
	p.Add(plotter.NewGrid(), scatter)
	return p, nil
}
