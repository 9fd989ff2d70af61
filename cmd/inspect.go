package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/projector"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/render"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var datasetName, fieldName, pngPath string
	var frame int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the heatmap and bar projections of one frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if datasetName == "" {
				if len(cfg.Datasets) != 1 {
					return errors.New("inspect: --dataset is required when the config holds more than one dataset")
				}
				datasetName = cfg.Datasets[0].Name
			}
			field, err := projector.ParseField(fieldName)
			if err != nil {
				return err
			}

			library, err := loadLibrary(cfg, datasetName)
			if err != nil {
				return err
			}
			ds, _ := library.Get(datasetName)

			hm, err := ds.ProjectHeatmap(frame, field)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s frame %d of %d (%s)\n", ds.Name(), frame, ds.Len(), field)
			fmt.Fprintln(out, heatmapTable(hm))

			bar, err := ds.ProjectBar(frame)
			switch {
			case errors.Is(err, projector.ErrMissingScoreColumn):
				fmt.Fprintf(out, "no bar chart: %v\n", err)
			case err != nil:
				return err
			default:
				fmt.Fprintln(out, barTable(bar))
			}

			if pngPath != "" {
				return writeHeatmapPNG(pngPath, ds.Name(), hm)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&datasetName, "dataset", "d", "", "Dataset name from the config")
	cmd.Flags().IntVarP(&frame, "frame", "f", 0, "Frame index")
	cmd.Flags().StringVar(&fieldName, "field", string(projector.FieldPrediction), "prediction or ground_truth")
	cmd.Flags().StringVar(&pngPath, "png", "", "Also write the heatmap as a PNG to this path")

	return cmd
}

//heatmapTable prints the grid as it is drawn, top row first. Padding cells stay empty.
func heatmapTable(hm *projector.Heatmap) string {
	headers := make([]string, hm.Cols)
	aligns := make([]columnAlignment, hm.Cols)
	for c := range headers {
		headers[c] = strconv.Itoa(c)
		aligns[c] = alignRight
	}

	rows := make([][]string, 0, hm.Rows)
	for r := hm.Rows - 1; r >= 0; r-- {
		row := make([]string, hm.Cols)
		for c := range row {
			if label := hm.Annotations[r][c]; label != "" {
				row[c] = fmt.Sprintf("%s %.2f", label, hm.Z[r][c])
			}
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns)
}

func barTable(bar *projector.Bar) string {
	rows := make([][]string, len(bar.Labels))
	for i, label := range bar.Labels {
		rows[i] = []string{label, strconv.FormatFloat(bar.Values[i], 'f', 4, 64), bar.HoverText[i]}
	}
	return renderTable([]string{"class", "score", "hover"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft})
}

func writeHeatmapPNG(path, title string, hm *projector.Heatmap) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("inspect: Could not create '%s', got '%v'", path, err)
	}
	if err := render.HeatmapPNG(f, title, hm, 6*vg.Inch, 4*vg.Inch); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("inspect: Could not close '%s', got '%v'", path, err)
	}
	return nil
}
