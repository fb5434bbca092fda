package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/abhisek/counsel/internal/features"
	"github.com/abhisek/counsel/internal/table"
	"go.uber.org/zap"
)

// DefaultName is the name of a Default strategy built without WithName.
const DefaultName = "DefaultImprovementStrategy"

func init() {
	if err := CheckDefaultConfig(); err != nil {
		panic(err)
	}
}

// Default moves each student to the configured targets and scores the move.
// Binary features cost 1 when they change, numeric features cost the
// absolute distance to the target and nominal features are free.
type Default struct {
	*Base
}

var _ Strategy = (*Default)(nil)

// NewDefault creates a Default strategy over x and final grades y. Without
// WithConfig it uses DefaultConfig.
func NewDefault(x *table.Table, y *table.Series, opts ...Option) (*Default, error) {
	defaults := []Option{WithName(DefaultName), WithConfig(DefaultConfig())}
	b, err := NewBase(x, y, append(defaults, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Default{Base: b}, nil
}

// Apply computes the target table. Re-running starts again from the source
// table and replaces the previous result.
func (d *Default) Apply(ctx context.Context) error {
	return d.commit(ctx, d.improve)
}

func (d *Default) improve(ctx context.Context, work *table.Table) error {
	if d.labels == nil {
		return ErrNoLabels
	}
	start := time.Now()
	targets := d.config.targets
	n := work.Len()
	d.logger.Debug("applying strategy",
		zap.Int("students", n),
		zap.Strings("features", d.config.Keys()))

	kinds := make([]features.Kind, len(targets))
	levels := make([][]float64, len(targets))
	for j, t := range targets {
		kinds[j], _ = d.metadata.KindOf(t.Feature)
		if kinds[j] == features.KindNominal {
			d.logger.Debug("nominal feature carries no improvement cost", zap.String("feature", t.Feature))
			continue
		}
		levels[j] = make([]float64, n)
	}

	index := work.Index()
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j, t := range targets {
			cur, err := work.At(i, t.Feature)
			if err != nil {
				return err
			}
			switch kinds[j] {
			case features.KindBinary:
				if !cur.Equal(t.Value) {
					levels[j][i] = 1
				}
			case features.KindNumeric:
				c, ok := cur.Float()
				if !ok {
					return &ConfigurationError{
						Feature: t.Feature,
						Reason:  fmt.Sprintf("student %s has non-numeric value %q", index[i], cur.String()),
					}
				}
				tv, _ := t.Value.Float()
				levels[j][i] = math.Abs(c - tv)
			}
			if err := work.Set(i, t.Feature, t.Value); err != nil {
				return err
			}
		}
	}

	var implCols []string
	for j, t := range targets {
		if levels[j] == nil {
			continue
		}
		col := ImpLevelColumn(t.Feature)
		if err := work.SetFloats(col, levels[j]); err != nil {
			return err
		}
		implCols = append(implCols, col)
	}

	input, err := work.Select(d.x.Columns()...)
	if err != nil {
		return err
	}
	expected, err := d.model.Predict(ctx, input)
	if err != nil {
		return fmt.Errorf("predict expected grades with %s: %w", d.model.Name(), err)
	}
	if len(expected) != n {
		return &ModelOutputError{Want: n, Got: len(expected)}
	}

	gain := make([]float64, n)
	complexity := make([]float64, n)
	for i := range n {
		gain[i] = expected[i] - d.labels[i]
		for j := range levels {
			if levels[j] != nil {
				complexity[i] += levels[j][i]
			}
		}
	}
	for _, c := range []struct {
		name string
		vals []float64
	}{
		{ColExpectedGrade, expected},
		{ColPerformanceGain, gain},
		{ColComplexity, complexity},
	} {
		if err := work.SetFloats(c.name, c.vals); err != nil {
			return err
		}
	}

	d.logger.Info("strategy applied",
		zap.Int("students", n),
		zap.Strings("implevel_columns", implCols),
		zap.String("model", d.model.Name()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
