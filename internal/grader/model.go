// Package grader holds the grade inference models a strategy uses to
// estimate expected grades for a hypothetically improved student table.
package grader

import (
	"context"

	"github.com/abhisek/counsel/internal/table"
)

// Model predicts one grade per row of a feature table.
//
// Predict must return exactly features.Len() values in row order and must
// not modify features. Implementations that load artifacts treat them as
// read-only, so a Model may be shared between strategies.
type Model interface {
	Name() string
	Predict(ctx context.Context, features *table.Table) ([]float64, error)
}

// Factory builds a Model on demand. Strategies call it when no model was
// injected directly.
type Factory func() (Model, error)

// FuncModel adapts a plain function to the Model interface.
type FuncModel struct {
	ModelName string
	Fn        func(ctx context.Context, features *table.Table) ([]float64, error)
}

func (m FuncModel) Name() string {
	if m.ModelName == "" {
		return "func"
	}
	return m.ModelName
}

func (m FuncModel) Predict(ctx context.Context, features *table.Table) ([]float64, error) {
	return m.Fn(ctx, features)
}
