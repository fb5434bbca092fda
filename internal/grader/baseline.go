package grader

import (
	"context"

	"github.com/abhisek/counsel/internal/table"
)

// BaselineName is the model name of the shipped baseline grader.
const BaselineName = "grader-model-v1"

// BaselineModel one-hot encodes the categorical student features and feeds
// the result to a linear regressor.
type BaselineModel struct {
	name      string
	encoder   *OneHotEncoder
	regressor *LinearRegressor
}

// NewBaselineModel pairs a fitted encoder with a fitted regressor.
func NewBaselineModel(name string, encoder *OneHotEncoder, regressor *LinearRegressor) *BaselineModel {
	if name == "" {
		name = BaselineName
	}
	return &BaselineModel{name: name, encoder: encoder, regressor: regressor}
}

func (m *BaselineModel) Name() string { return m.name }

// Encoder returns the model's encoder.
func (m *BaselineModel) Encoder() *OneHotEncoder { return m.encoder }

// Predict encodes features into a fresh table and runs the regressor on it.
// The caller's table is never modified.
func (m *BaselineModel) Predict(ctx context.Context, features *table.Table) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	encoded, err := m.encoder.Transform(features)
	if err != nil {
		return nil, err
	}
	return m.regressor.Predict(encoded)
}
