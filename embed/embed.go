// Package embed projects selected numeric columns into a low-dimensional
// embedding for the PCA and UMAP views.
package embed

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/zibamira/CTCoral-CoDA/table"
)

// ColumnPrefix names the derived embedding columns: the i-th component
// becomes "embedding:feature:<i>" in the vertex table.
const ColumnPrefix = "embedding:feature:"

// Reducer maps an (nsamples x nfeatures) matrix to ncomponents output
// features. The in-tree reducer is PCA; other reducers plug in here.
type Reducer interface {
	FitTransform(x mat.Matrix, ncomponents int) ([][]float64, error)
}

// Aggregator assembles the input matrix from the configured columns, runs
// the reducer and writes the embedding columns back into the table.
//
// The embedding is intentionally not recomputed on every reload: it only
// runs on explicit request or when the column choice changes, because
// fitting is expensive and a jumping embedding is disorienting.
type Aggregator struct {
	// Columns are the input columns of the reduction.
	Columns []string

	// Components is the embedding dimension, usually 2.
	Components int

	// Standardize scales each input column to zero mean and unit variance
	// before the reduction.
	Standardize bool

	reducer Reducer
	epoch   uint64

	// embedding caches the component columns of the last fit so reloads
	// can re-add them without refitting.
	embedding [][]float64
}

// New creates a 2D aggregator around the given reducer.
func New(reducer Reducer) *Aggregator {
	return &Aggregator{
		Components: 2,
		reducer:    reducer,
	}
}

// Epoch returns the table epoch of the last successful Apply.
func (a *Aggregator) Epoch() uint64 { return a.epoch }

// SetReducer swaps the reducer, for capability slots filled after
// construction.
func (a *Aggregator) SetReducer(r Reducer) { a.reducer = r }

// matrix assembles the input matrix from the configured columns. Returns
// nil when no usable column is configured or any value is NaN; both are
// documented skips, not errors.
func (a *Aggregator) matrix(tbl *table.Table) *mat.Dense {
	var columns [][]float64
	for _, name := range a.Columns {
		values := tbl.Numbers(name)
		if values == nil {
			continue
		}
		for _, v := range values {
			if math.IsNaN(v) {
				return nil
			}
		}
		columns = append(columns, values)
	}
	if len(columns) == 0 {
		return nil
	}

	nrows := tbl.NumRows()
	x := mat.NewDense(nrows, len(columns), nil)
	for j, col := range columns {
		for i := 0; i < nrows; i++ {
			x.Set(i, j, col[i])
		}
	}
	if a.Standardize {
		standardize(x)
	}
	return x
}

// standardize centers every column on its mean and scales by its standard
// deviation, skipping zero-variance columns.
func standardize(x *mat.Dense) {
	rows, cols := x.Dims()
	n := float64(rows)
	for j := 0; j < cols; j++ {
		mean := 0.0
		for i := 0; i < rows; i++ {
			mean += x.At(i, j)
		}
		mean /= n

		variance := 0.0
		for i := 0; i < rows; i++ {
			d := x.At(i, j) - mean
			variance += d * d
		}
		std := math.Sqrt(variance / n)
		if std == 0 {
			std = 1.0
		}

		for i := 0; i < rows; i++ {
			x.Set(i, j, (x.At(i, j)-mean)/std)
		}
	}
}

// Apply runs the reduction and writes the embedding columns into the table.
// The skip conditions (no columns, NaN input) yield (false, nil): the view
// keeps its previous embedding.
func (a *Aggregator) Apply(tbl *table.Table) (bool, error) {
	if a.reducer == nil {
		return false, nil
	}
	x := a.matrix(tbl)
	if x == nil {
		return false, nil
	}

	_, cols := x.Dims()
	ncomponents := a.Components
	if ncomponents > cols {
		ncomponents = cols
	}

	embedded, err := a.reducer.FitTransform(x, ncomponents)
	if err != nil {
		return false, err
	}

	nrows := tbl.NumRows()
	columns := make([][]float64, ncomponents)
	for c := 0; c < ncomponents; c++ {
		values := make([]float64, nrows)
		for i := 0; i < nrows; i++ {
			values[i] = embedded[i][c]
		}
		name := fmt.Sprintf("%s%d", ColumnPrefix, c)
		if err := tbl.SetNumbers(name, values); err != nil {
			return false, err
		}
		columns[c] = values
	}

	a.embedding = columns
	a.epoch = tbl.Epoch()
	return true, nil
}

// Reapply writes the cached embedding of the last fit into the table
// without refitting. Returns false when no embedding exists yet or the row
// count changed, in which case the caller has to fit again.
func (a *Aggregator) Reapply(tbl *table.Table) (bool, error) {
	if len(a.embedding) == 0 || len(a.embedding[0]) != tbl.NumRows() {
		return false, nil
	}
	for c, values := range a.embedding {
		name := fmt.Sprintf("%s%d", ColumnPrefix, c)
		if err := tbl.SetNumbers(name, append([]float64(nil), values...)); err != nil {
			return false, err
		}
	}
	a.epoch = tbl.Epoch()
	return true, nil
}
