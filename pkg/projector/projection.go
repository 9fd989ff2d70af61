package projector

import (
	"fmt"
	"math"
	"strings"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/utils"
)

//Field selects which value a heatmap highlights
type Field string

const (
	FieldPrediction  Field = "prediction"
	FieldGroundTruth Field = "ground_truth"
)

//ParseField accepts the field names used by the client, an empty string is a prediction
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prediction", "pred", "top1":
		return FieldPrediction, nil
	case "ground_truth", "ground-truth", "label", "gt":
		return FieldGroundTruth, nil
	default:
		return "", fmt.Errorf("ParseField: %w: unknown field '%s'", ErrFieldUnavailable, s)
	}
}

const (
	colorWhite = "#ffffff"

	//PredictionColor is the accent of prediction heatmaps and bars
	PredictionColor = "#f71111"
	//GroundTruthColor is the accent of ground truth heatmaps
	GroundTruthColor = "#1f77b4"

	fontDark  = "#3c3636"
	fontLight = "#efecee"
)

//ColorStop is one endpoint of a heatmap colorscale
type ColorStop struct {
	Position float64 `json:"position"`
	Color    string  `json:"color"`
}

//Heatmap is the matrix form of a frame projection, shaped and row reversed like the LayoutGrid
type Heatmap struct {
	Field Field `json:"field"`
	Frame int   `json:"frame"`
	Rows  int   `json:"rows"`
	Cols  int   `json:"cols"`

	Z           [][]float64 `json:"z"`
	Annotations [][]string  `json:"annotations"`
	HoverText   [][]string  `json:"hover_text"`
	Colorscale  []ColorStop `json:"colorscale"`
	FontColors  []string    `json:"font_colors"`
	ZMin        float64     `json:"zmin"`
	ZMax        float64     `json:"zmax"`
}

//Bar is the vector form of a frame projection, in catalog order without padding
type Bar struct {
	Frame     int       `json:"frame"`
	Labels    []string  `json:"labels"`
	Values    []float64 `json:"values"`
	HoverText []string  `json:"hover_text"`
}

//ProjectHeatmap places the frame's single class on the grid. For a prediction the cell holds the
//top-1 confidence, for ground truth it holds 1. A class missing from the catalog leaves every cell at 0.
func (d *Dataset) ProjectHeatmap(frame int, field Field) (*Heatmap, error) {
	if err := d.checkFrame(frame); err != nil {
		return nil, fmt.Errorf("ProjectHeatmap: %w", err)
	}

	rec := d.records[frame]
	var id, accent string
	var value float64
	switch field {
	case FieldPrediction:
		id, value, accent = rec.Top1, rec.Top1Score, PredictionColor
	case FieldGroundTruth:
		if !d.hasLabels {
			return nil, fmt.Errorf("ProjectHeatmap: %w: dataset '%s' has no ground truth column", ErrFieldUnavailable, d.name)
		}
		id, value, accent = rec.Label, 1, GroundTruthColor
	default:
		return nil, fmt.Errorf("ProjectHeatmap: %w: unknown field '%s'", ErrFieldUnavailable, field)
	}

	flat := make([]float64, len(d.grid.Slots))
	matched := false
	for i, slot := range d.grid.Slots {
		if slot != utils.PaddingClassID && slot == id {
			flat[i] = value
			matched = true
		}
	}

	h := d.heatmapFrom(flat, frame, field)
	if matched {
		h.Colorscale = []ColorStop{{0, colorWhite}, {1, accent}}
		h.FontColors = []string{fontDark, fontLight}
	}
	return h, nil
}

//NeutralHeatmap is the all zero, all white heatmap shown when a frame can not be projected
func (d *Dataset) NeutralHeatmap(frame int, field Field) *Heatmap {
	return d.heatmapFrom(make([]float64, len(d.grid.Slots)), frame, field)
}

func (d *Dataset) heatmapFrom(flat []float64, frame int, field Field) *Heatmap {
	hover := make([]string, len(flat))
	for i, v := range flat {
		hover[i] = cellHoverText(v)
	}

	g := d.grid
	return &Heatmap{
		Field:       field,
		Frame:       frame,
		Rows:        g.Rows,
		Cols:        g.Cols,
		Z:           ReverseRows(reshape(flat, g.Rows, g.Cols)),
		Annotations: cloneMatrix(g.Labels),
		HoverText:   ReverseRows(reshape(hover, g.Rows, g.Cols)),
		Colorscale:  []ColorStop{{0, colorWhite}, {1, colorWhite}},
		FontColors:  []string{fontDark},
		ZMin:        0,
		ZMax:        1,
	}
}

//ProjectBar returns every class confidence of the frame. It needs a score column per catalog class.
func (d *Dataset) ProjectBar(frame int) (*Bar, error) {
	if err := d.checkFrame(frame); err != nil {
		return nil, fmt.Errorf("ProjectBar: %w", err)
	}
	if len(d.missingScores) > 0 {
		return nil, fmt.Errorf("ProjectBar: %w: no score column for class '%s' in dataset '%s'", ErrMissingScoreColumn, d.missingScores[0], d.name)
	}

	values := append([]float64(nil), d.records[frame].Scores...)
	return d.barFrom(values, frame), nil
}

//NeutralBar is the all zero bar chart shown when a frame can not be projected
func (d *Dataset) NeutralBar(frame int) *Bar {
	return d.barFrom(make([]float64, d.catalog.Len()), frame)
}

func (d *Dataset) barFrom(values []float64, frame int) *Bar {
	hover := make([]string, len(values))
	for i, v := range values {
		hover[i] = barHoverText(v)
	}
	return &Bar{
		Frame:     frame,
		Labels:    d.catalog.Labels(),
		Values:    values,
		HoverText: hover,
	}
}

func cellHoverText(v float64) string {
	return fmt.Sprintf("%.2f%% confidence", v*100)
}

func barHoverText(v float64) string {
	return fmt.Sprintf("%d%% confidence", int(math.RoundToEven(v*100)))
}
