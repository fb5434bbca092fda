package grader

import (
	"fmt"
	"slices"

	"github.com/abhisek/counsel/internal/table"
	"gonum.org/v1/gonum/mat"
)

// LinearRegressor predicts y = X·w + b over a fixed, named feature set.
type LinearRegressor struct {
	features  []string
	coef      []float64
	intercept float64
}

// NewLinearRegressor creates a regressor with one coefficient per feature.
func NewLinearRegressor(features []string, coef []float64, intercept float64) (*LinearRegressor, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("regressor needs at least one feature")
	}
	if len(features) != len(coef) {
		return nil, fmt.Errorf("regressor has %d features and %d coefficients", len(features), len(coef))
	}
	seen := make(map[string]bool, len(features))
	for _, f := range features {
		if seen[f] {
			return nil, fmt.Errorf("regressor feature %q listed twice", f)
		}
		seen[f] = true
	}
	return &LinearRegressor{
		features:  slices.Clone(features),
		coef:      slices.Clone(coef),
		intercept: intercept,
	}, nil
}

// Features returns the input columns in coefficient order.
func (r *LinearRegressor) Features() []string { return slices.Clone(r.features) }

// Intercept returns the bias term.
func (r *LinearRegressor) Intercept() float64 { return r.intercept }

// Predict returns one prediction per row of t. Columns of t that the
// regressor does not use are ignored.
func (r *LinearRegressor) Predict(t *table.Table) ([]float64, error) {
	var missing []string
	for _, f := range r.features {
		if !t.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &ModelInputError{Missing: missing}
	}

	n, p := t.Len(), len(r.features)
	if n == 0 {
		return []float64{}, nil
	}

	data := make([]float64, n*p)
	for j, f := range r.features {
		col, err := t.Floats(f)
		if err != nil {
			return nil, &ModelInputError{Err: err}
		}
		for i, v := range col {
			data[i*p+j] = v
		}
	}

	x := mat.NewDense(n, p, data)
	w := mat.NewVecDense(p, slices.Clone(r.coef))
	var y mat.VecDense
	y.MulVec(x, w)

	out := make([]float64, n)
	for i := range out {
		out[i] = y.AtVec(i) + r.intercept
	}
	return out, nil
}
