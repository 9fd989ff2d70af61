package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/projector"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

//HeatmapChart builds an echarts heatmap of h. Row 0 of h is drawn at the bottom, as in the layout grid.
func HeatmapChart(title string, h *projector.Heatmap) *charts.HeatMap {
	xs := make([]string, h.Cols)
	for c := range xs {
		xs[c] = strconv.Itoa(c)
	}
	ys := make([]string, h.Rows)
	for r := range ys {
		ys[r] = strconv.Itoa(r)
	}

	data := make([]opts.HeatMapData, 0, h.Rows*h.Cols)
	for r, row := range h.Z {
		for c, v := range row {
			data = append(data, opts.HeatMapData{
				Name:  h.Annotations[r][c],
				Value: [3]interface{}{c, r, v},
			})
		}
	}

	colors := make([]string, len(h.Colorscale))
	for i, stop := range h.Colorscale {
		colors[i] = stop.Color
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "55vh"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("frame=%d field=%s", h.Frame, h.Field)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(false),
			Calculable: opts.Bool(true),
			Min:        float32(h.ZMin),
			Max:        float32(h.ZMax),
			InRange:    &opts.VisualMapInRange{Color: colors},
		}),
	)
	hm.SetXAxis(xs).AddSeries("confidence", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}"}),
	)

	return hm
}

//BarChart builds an echarts bar chart of b
func BarChart(title string, b *projector.Bar) *charts.Bar {
	data := make([]opts.BarData, len(b.Values))
	for i, v := range b.Values {
		data[i] = opts.BarData{Name: b.HoverText[i], Value: v}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "40vh"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("frame=%d", b.Frame)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "confidence"}),
	)
	bar.SetXAxis(b.Labels).
		AddSeries("confidence", data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: projector.PredictionColor}),
		)

	return bar
}

//WritePage renders the heatmap and, when b is not nil, the bar chart as one HTML page
func WritePage(w io.Writer, title string, h *projector.Heatmap, b *projector.Bar) error {
	page := components.NewPage()
	page.AddCharts(HeatmapChart(title, h))
	if b != nil {
		page.AddCharts(BarChart("Confidence Level of Action Segmentation", b))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("WritePage: Could not render page, got '%v'", err)
	}
	return nil
}
