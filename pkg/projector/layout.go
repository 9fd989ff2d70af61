package projector

import (
	"fmt"
	"math"
	"strings"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/utils"
)

//LayoutPolicy chooses the rectangle holding n catalog entries
type LayoutPolicy func(n int) (rows, cols int)

//SquarePolicy places n entries on a ceil(sqrt(n)) sided square
func SquarePolicy(n int) (int, int) {
	if n <= 0 {
		return 0, 0
	}
	side := int(math.Ceil(math.Sqrt(float64(n))))
	return side, side
}

//TwoRowPolicy places n entries on 2 rows of ceil((n+1)/2) columns
func TwoRowPolicy(n int) (int, int) {
	if n <= 0 {
		return 0, 0
	}
	return 2, (n + 2) / 2
}

//PolicyByName resolves a configured policy name
func PolicyByName(name string) (LayoutPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "square":
		return SquarePolicy, nil
	case "two-row", "two_row", "tworow":
		return TwoRowPolicy, nil
	default:
		return nil, fmt.Errorf("PolicyByName: unknown layout policy '%s'", name)
	}
}

//LayoutGrid is the padded rows x cols placement of a catalog.
//IDs and Labels are row reversed, so the first catalog entries sit on the visual bottom row.
type LayoutGrid struct {
	Rows    int `json:"rows"`
	Cols    int `json:"cols"`
	Padding int `json:"padding"`

	//Slots holds the padded ids in catalog order, before reshaping
	Slots  []string   `json:"-"`
	IDs    [][]string `json:"ids"`
	Labels [][]string `json:"labels"`
}

//NewLayoutGrid computes the grid of c under policy
func NewLayoutGrid(c *ClassCatalog, policy LayoutPolicy) (*LayoutGrid, error) {
	if policy == nil {
		policy = SquarePolicy
	}

	n := c.Len()
	rows, cols := policy(n)
	if rows < 0 || cols < 0 || rows*cols < n {
		return nil, fmt.Errorf("NewLayoutGrid: policy returned %dx%d for %d classes", rows, cols, n)
	}

	size := rows * cols
	slots := utils.PadSequence(c.IDs(), size, utils.PaddingClassID)
	labels := utils.PadSequence(c.Labels(), size, "")

	return &LayoutGrid{
		Rows:    rows,
		Cols:    cols,
		Padding: size - n,
		Slots:   slots,
		IDs:     ReverseRows(reshape(slots, rows, cols)),
		Labels:  ReverseRows(reshape(labels, rows, cols)),
	}, nil
}

//Flatten undoes the row reversal of a grid shaped matrix and drops the padding,
//returning the values in catalog order.
func (g *LayoutGrid) Flatten(m [][]float64) []float64 {
	out := make([]float64, 0, len(g.Slots)-g.Padding)
	for _, row := range ReverseRows(m) {
		out = append(out, row...)
	}
	return out[:len(g.Slots)-g.Padding]
}

//ReverseRows returns m with its row order reversed. Rows are shared, not copied.
func ReverseRows[T any](m [][]T) [][]T {
	out := make([][]T, len(m))
	for i, row := range m {
		out[len(m)-1-i] = row
	}
	return out
}

func reshape[T any](flat []T, rows, cols int) [][]T {
	out := make([][]T, rows)
	for r := 0; r < rows; r++ {
		row := make([]T, cols)
		copy(row, flat[r*cols:(r+1)*cols])
		out[r] = row
	}
	return out
}

func cloneMatrix[T any](m [][]T) [][]T {
	out := make([][]T, len(m))
	for i, row := range m {
		out[i] = append([]T(nil), row...)
	}
	return out
}
