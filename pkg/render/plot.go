package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/projector"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//paletteSteps is how many colors the heatmap palette interpolates between its two stops
const paletteSteps = 64

//heatGrid adapts a row reversed projection matrix to plotter.GridXYZ, row 0 at the bottom
type heatGrid struct {
	z [][]float64
}

func (g heatGrid) Dims() (c, r int) {
	if len(g.z) == 0 {
		return 0, 0
	}
	return len(g.z[0]), len(g.z)
}

func (g heatGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g heatGrid) X(c int) float64    { return float64(c) }
func (g heatGrid) Y(r int) float64    { return float64(r) }

//twoStopPalette interpolates linearly between the first and last colorscale stop
type twoStopPalette struct {
	colors []color.Color
}

func (p twoStopPalette) Colors() []color.Color { return p.colors }

func newTwoStopPalette(stops []projector.ColorStop, steps int) (twoStopPalette, error) {
	if len(stops) == 0 || steps < 2 {
		return twoStopPalette{}, errors.New("newTwoStopPalette: need a colorscale and at least 2 steps")
	}
	from, err := parseHexColor(stops[0].Color)
	if err != nil {
		return twoStopPalette{}, err
	}
	to, err := parseHexColor(stops[len(stops)-1].Color)
	if err != nil {
		return twoStopPalette{}, err
	}

	colors := make([]color.Color, steps)
	for i := range colors {
		t := float64(i) / float64(steps-1)
		colors[i] = color.RGBA{
			R: lerp(from.R, to.R, t),
			G: lerp(from.G, to.G, t),
			B: lerp(from.B, to.B, t),
			A: 255,
		}
	}
	return twoStopPalette{colors: colors}, nil
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

//parseHexColor reads "#rrggbb"
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("parseHexColor: '%s' is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parseHexColor: '%s' is not #rrggbb", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

//HeatmapPNG draws h with its annotations and writes it as a PNG of the given size
func HeatmapPNG(w io.Writer, title string, h *projector.Heatmap, width, height vg.Length) error {
	if h.Rows == 0 || h.Cols == 0 {
		return errors.New("HeatmapPNG: empty heatmap")
	}

	pal, err := newTwoStopPalette(h.Colorscale, paletteSteps)
	if err != nil {
		return fmt.Errorf("HeatmapPNG: %v", err)
	}

	hm := plotter.NewHeatMap(heatGrid{z: h.Z}, pal)
	hm.Min, hm.Max = h.ZMin, h.ZMax

	xys := make(plotter.XYs, 0, h.Rows*h.Cols)
	texts := make([]string, 0, h.Rows*h.Cols)
	for r, row := range h.Annotations {
		for c, label := range row {
			if label == "" {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			texts = append(texts, label)
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.Add(hm)

	if len(xys) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
		if err != nil {
			return fmt.Errorf("HeatmapPNG: Could not build labels, got '%v'", err)
		}
		p.Add(labels)
	}

	return writePNG(p, w, width, height)
}

//BarPNG draws b as a bar chart on a fixed [0,1] axis
func BarPNG(w io.Writer, title string, b *projector.Bar, width, height vg.Length) error {
	if len(b.Values) == 0 {
		return errors.New("BarPNG: empty bar chart")
	}

	values := make(plotter.Values, len(b.Values))
	copy(values, b.Values)

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("BarPNG: Could not build bars, got '%v'", err)
	}
	accent, _ := parseHexColor(projector.PredictionColor)
	bars.Color = accent
	bars.LineStyle.Width = vg.Length(0)

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "confidence"
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(bars)
	p.NominalX(b.Labels...)

	return writePNG(p, w, width, height)
}

func writePNG(p *plot.Plot, w io.Writer, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("writePNG: Could not create writer, got '%v'", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writePNG: Could not write image, got '%v'", err)
	}
	return nil
}
