package projector

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/utils"
)

//Columns names the CSV columns a dataset is read from. Empty Frame, Top1 and Top1Score
//fall back to the defaults, an empty Label means the source has no ground truth.
type Columns struct {
	Frame     string
	Top1      string
	Top1Score string
	Label     string
}

func (c Columns) withDefaults() Columns {
	if c.Frame == "" {
		c.Frame = utils.DefaultFrameColumn
	}
	if c.Top1 == "" {
		c.Top1 = utils.DefaultTop1Column
	}
	if c.Top1Score == "" {
		c.Top1Score = utils.DefaultTop1ScoreColumn
	}
	return c
}

//Options controls how a source is turned into a Dataset
type Options struct {
	Name    string
	Columns Columns

	//Classes is the fixed enumeration of the catalog. When empty the catalog is inferred
	//from the top-1 column.
	Classes []Class

	//Labels maps class ids to display labels for an inferred catalog
	Labels map[string]string

	//Layout defaults to SquarePolicy
	Layout LayoutPolicy
}

//FrameRecord is one row of the annotation source
type FrameRecord struct {
	Frame     string    `json:"frame"`
	Top1      string    `json:"top1"`
	Top1Score float64   `json:"top1_score"`
	Label     string    `json:"label,omitempty"`
	Scores    []float64 `json:"scores,omitempty"`
}

//Dataset is the immutable result of Load. It is safe for concurrent readers.
type Dataset struct {
	name    string
	catalog *ClassCatalog
	grid    *LayoutGrid
	records []FrameRecord

	hasFrames     bool
	hasLabels     bool
	missingScores []string
}

//Load reads the CSV at path once and builds its Dataset
func Load(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Load: %w: %v", ErrDataLoad, err)
	}
	defer f.Close()

	if opts.Name == "" {
		opts.Name = path
	}

	ds, err := Read(f, opts)
	if err != nil {
		return nil, err
	}

	log.Printf("Load: '%s' loaded from '%s', %d frames, %d classes on a %dx%d grid", ds.name, path, ds.Len(), ds.catalog.Len(), ds.grid.Rows, ds.grid.Cols)
	return ds, nil
}

//Read builds a Dataset from CSV content. The header row names the columns.
func Read(r io.Reader, opts Options) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Read: %w: %v", ErrDataLoad, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("Read: %w: source has no header", ErrDataLoad)
	}

	cols := opts.Columns.withDefaults()
	header := indexHeader(rows[0])
	body := rows[1:]

	frameIdx, hasFrames := header[cols.Frame]
	top1Idx, hasTop1 := header[cols.Top1]
	scoreIdx, hasScore := header[cols.Top1Score]
	labelIdx, hasLabels := header[cols.Label]
	if cols.Label == "" {
		hasLabels = false
	} else if !hasLabels {
		return nil, fmt.Errorf("Read: %w: ground truth column '%s' is missing", ErrDataLoad, cols.Label)
	}

	var catalog *ClassCatalog
	if len(opts.Classes) > 0 {
		if catalog, err = NewCatalog(opts.Classes); err != nil {
			return nil, fmt.Errorf("Read: %w: %v", ErrDataLoad, err)
		}
	} else {
		if !hasTop1 {
			return nil, fmt.Errorf("Read: %w: top-1 column '%s' is missing and no fixed catalog was given", ErrDataLoad, cols.Top1)
		}
		ids := make([]string, len(body))
		for i, row := range body {
			ids[i] = strings.TrimSpace(row[top1Idx])
		}
		catalog = inferCatalog(ids, opts.Labels)
	}

	//per class score columns are named by class id
	classIdx := make([]int, catalog.Len())
	missing := make([]string, 0)
	for i, id := range catalog.IDs() {
		if idx, ok := header[id]; ok {
			classIdx[i] = idx
		} else {
			classIdx[i] = -1
			missing = append(missing, id)
		}
	}
	hasAllScores := len(missing) == 0 && catalog.Len() > 0

	if !hasTop1 && !hasAllScores {
		return nil, fmt.Errorf("Read: %w: top-1 column '%s' is missing and so is the score column of '%s'", ErrDataLoad, cols.Top1, missing[0])
	}
	if hasTop1 && !hasScore && !hasAllScores {
		return nil, fmt.Errorf("Read: %w: top-1 score column '%s' is missing", ErrDataLoad, cols.Top1Score)
	}

	records := make([]FrameRecord, len(body))
	for i, row := range body {
		line := i + 2
		rec := FrameRecord{}

		if hasFrames {
			rec.Frame = strings.TrimSpace(row[frameIdx])
		}
		if hasLabels {
			rec.Label = strings.TrimSpace(row[labelIdx])
		}

		if len(missing) < catalog.Len() {
			rec.Scores = make([]float64, catalog.Len())
			for c, idx := range classIdx {
				if idx < 0 {
					continue
				}
				if rec.Scores[c], err = parseScore(row[idx], catalog.classes[c].ID, line); err != nil {
					return nil, err
				}
			}
		}

		switch {
		case hasTop1 && hasScore:
			rec.Top1 = strings.TrimSpace(row[top1Idx])
			if rec.Top1Score, err = parseScore(row[scoreIdx], cols.Top1Score, line); err != nil {
				return nil, err
			}
		case hasTop1:
			rec.Top1 = strings.TrimSpace(row[top1Idx])
			if c, ok := catalog.Index(rec.Top1); ok {
				rec.Top1Score = rec.Scores[c]
			}
		default:
			c := argmax(rec.Scores)
			rec.Top1, rec.Top1Score = catalog.classes[c].ID, rec.Scores[c]
		}

		records[i] = rec
	}

	grid, err := NewLayoutGrid(catalog, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("Read: %w: %v", ErrDataLoad, err)
	}

	return &Dataset{
		name:          opts.Name,
		catalog:       catalog,
		grid:          grid,
		records:       records,
		hasFrames:     hasFrames,
		hasLabels:     hasLabels,
		missingScores: missing,
	}, nil
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

//parseScore reads a confidence cell. An empty cell reads as 0.
func parseScore(cell, column string, line int) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("parseScore: %w: line %d column '%s': '%s' is not a number", ErrSchema, line, column, cell)
	}
	if !(v >= 0 && v <= 1) {
		return 0, fmt.Errorf("parseScore: %w: line %d column '%s': %v is outside [0,1]", ErrSchema, line, column, v)
	}
	return v, nil
}

//argmax returns the first index of the highest value
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func (d *Dataset) Name() string {
	return d.name
}

func (d *Dataset) Catalog() *ClassCatalog {
	return d.catalog
}

func (d *Dataset) Grid() *LayoutGrid {
	return d.grid
}

//Len is the number of frames (rows) in the dataset
func (d *Dataset) Len() int {
	return len(d.records)
}

//HasFrameNames reports whether rows carry an image filename
func (d *Dataset) HasFrameNames() bool {
	return d.hasFrames
}

//HasGroundTruth reports whether the dataset was loaded with a label column
func (d *Dataset) HasGroundTruth() bool {
	return d.hasLabels
}

//HasScores reports whether every catalog class has a score column, which ProjectBar needs
func (d *Dataset) HasScores() bool {
	return len(d.missingScores) == 0
}

//Record returns a copy of the row at frame
func (d *Dataset) Record(frame int) (FrameRecord, error) {
	if err := d.checkFrame(frame); err != nil {
		return FrameRecord{}, err
	}
	rec := d.records[frame]
	rec.Scores = append([]float64(nil), rec.Scores...)
	return rec, nil
}

func (d *Dataset) checkFrame(frame int) error {
	if frame < 0 || frame >= len(d.records) {
		return fmt.Errorf("%w: frame %d, dataset '%s' has %d frames", ErrFrameIndexOutOfRange, frame, d.name, len(d.records))
	}
	return nil
}
