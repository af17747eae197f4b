package embed

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/zibamira/CTCoral-CoDA/errors"
)

// PCA is the principal component reducer. After FitTransform the explained
// variance ratios of the kept components are available for the variance
// plot of the PCA view.
type PCA struct {
	explained []float64
}

// NewPCA creates an unfitted PCA reducer.
func NewPCA() *PCA {
	return &PCA{}
}

// ExplainedVarianceRatio returns the fraction of total variance captured by
// each kept component, in component order. Nil before the first fit.
func (p *PCA) ExplainedVarianceRatio() []float64 {
	return p.explained
}

// FitTransform fits the principal components of x and projects x onto the
// first ncomponents of them.
func (p *PCA) FitTransform(x mat.Matrix, ncomponents int) ([][]float64, error) {
	rows, cols := x.Dims()
	if ncomponents < 1 || ncomponents > cols {
		return nil, errors.NewConfigurationError(
			"cannot keep %d components of %d features", ncomponents, cols)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.New("principal component factorization failed")
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	variances := pc.VarsTo(nil)

	total := 0.0
	for _, v := range variances {
		total += v
	}
	p.explained = make([]float64, ncomponents)
	for i := 0; i < ncomponents; i++ {
		if total > 0 {
			p.explained[i] = variances[i] / total
		}
	}

	// Project the centered data onto the kept components.
	centered := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		mean := 0.0
		for i := 0; i < rows; i++ {
			mean += x.At(i, j)
		}
		mean /= float64(rows)
		for i := 0; i < rows; i++ {
			centered.Set(i, j, x.At(i, j)-mean)
		}
	}

	var projected mat.Dense
	projected.Mul(centered, vectors.Slice(0, cols, 0, ncomponents))

	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, ncomponents)
		for c := 0; c < ncomponents; c++ {
			out[i][c] = projected.At(i, c)
		}
	}
	return out, nil
}
