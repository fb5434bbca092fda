// Package strategy applies counseling strategies to a student feature table:
// it sets actionable features to target values, measures how far each
// student has to move, and asks a grader model for the resulting grade.
package strategy

import (
	"context"
	"fmt"

	"github.com/abhisek/counsel/internal/features"
	"github.com/abhisek/counsel/internal/grader"
	"github.com/abhisek/counsel/internal/table"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Derived column names in the target table.
const (
	ImpLevelSuffix     = "_implevel"
	ColExpectedGrade   = "ExpectedGrade"
	ColPerformanceGain = "PerformanceGain"
	ColComplexity      = "Complexity"
)

// ImpLevelColumn returns the implevel column name for feature.
func ImpLevelColumn(feature string) string { return feature + ImpLevelSuffix }

// Strategy is an improvement strategy bound to one feature table.
type Strategy interface {
	Name() string
	ActionableFeatures() []string
	Config() Config
	State() State
	Apply(ctx context.Context) error
	Target() (*table.Table, error)
}

// State tracks whether a strategy's target table can be read.
type State int

const (
	StateConstructed State = iota
	StateApplied
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateApplied:
		return "applied"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a strategy at construction.
type Option func(*options)

type options struct {
	config  *Config
	name    string
	model   grader.Model
	factory grader.Factory
	logger  *zap.Logger
}

// WithConfig sets the targets the strategy applies.
func WithConfig(c Config) Option {
	return func(o *options) { o.config = &c }
}

// WithName overrides the strategy name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithModel injects a ready grader model. It takes precedence over
// WithModelFactory.
func WithModel(m grader.Model) Option {
	return func(o *options) { o.model = m }
}

// WithModelFactory supplies a constructor called when no model is injected.
func WithModelFactory(f grader.Factory) Option {
	return func(o *options) { o.factory = f }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Base holds the state shared by every strategy: the source table, labels,
// targets, model and the most recent successful target table. It is not
// safe for concurrent use.
type Base struct {
	name     string
	x        *table.Table
	labels   []float64 // aligned to x's index; nil when no grades were given
	config   Config
	model    grader.Model
	metadata features.Registry
	logger   *zap.Logger

	target *table.Table
	state  State
	err    error
}

// NewBase validates the inputs and resolves the model. y may be nil, in
// which case Apply fails with ErrNoLabels. Without WithName the strategy is
// named with a random UUID.
func NewBase(x *table.Table, y *table.Series, opts ...Option) (*Base, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = uuid.NewString()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.config == nil {
		return nil, &ConfigurationError{Reason: "no targets configured"}
	}
	if x == nil || x.Len() == 0 {
		return nil, &ConfigurationError{Reason: "feature table is empty"}
	}

	b := &Base{
		name:     o.name,
		x:        x.Clone(),
		config:   *o.config,
		metadata: features.Metadata(),
		logger:   o.logger.With(zap.String("strategy", o.name)),
		state:    StateConstructed,
	}
	if err := b.checkConfig(); err != nil {
		return nil, err
	}

	if y != nil {
		labels, err := y.Align(x.Index())
		if err != nil {
			return nil, err
		}
		b.labels = labels
	}

	model, err := resolveModel(o)
	if err != nil {
		return nil, err
	}
	b.model = model
	return b, nil
}

func resolveModel(o options) (grader.Model, error) {
	if o.model != nil {
		return o.model, nil
	}
	if o.factory == nil {
		return nil, ErrNoModel
	}
	m, err := o.factory()
	if err != nil {
		return nil, fmt.Errorf("build grader model: %w", err)
	}
	if m == nil {
		return nil, ErrNoModel
	}
	return m, nil
}

func (b *Base) checkConfig() error {
	if b.config.Len() == 0 {
		return &ConfigurationError{Reason: "no targets configured"}
	}
	for _, t := range b.config.targets {
		if !b.x.Has(t.Feature) {
			return &ConfigurationError{Feature: t.Feature, Reason: "column not present in feature table"}
		}
		if err := validateTarget(b.metadata, t); err != nil {
			return err
		}
		if kind, _ := b.metadata.KindOf(t.Feature); kind == features.KindNumeric {
			if _, err := b.x.Floats(t.Feature); err != nil {
				return &ConfigurationError{Feature: t.Feature, Reason: "column has non-numeric values", Err: err}
			}
		}
	}
	return nil
}

func (b *Base) Name() string { return b.name }

// ActionableFeatures returns the configured features in order. The list is
// fixed for the strategy's lifetime.
func (b *Base) ActionableFeatures() []string { return b.config.Keys() }

func (b *Base) Config() Config { return Config{targets: b.config.Targets()} }

func (b *Base) State() State { return b.state }

// Err returns the error of the most recent failed Apply.
func (b *Base) Err() error { return b.err }

// Model returns the grader model in use.
func (b *Base) Model() grader.Model { return b.model }

// Source returns a copy of the untouched feature table.
func (b *Base) Source() *table.Table { return b.x.Clone() }

// Target returns a copy of the target table from the most recent successful
// Apply. A failed Apply leaves the previous target in place; check State to
// see whether it reflects the latest run.
func (b *Base) Target() (*table.Table, error) {
	if b.target == nil {
		return nil, ErrNotApplied
	}
	return b.target.Clone(), nil
}

// commit runs build on a fresh copy of the source table and swaps the
// result in only when build succeeds.
func (b *Base) commit(ctx context.Context, build func(context.Context, *table.Table) error) error {
	work := b.x.Clone()
	if err := build(ctx, work); err != nil {
		b.state = StateFailed
		b.err = err
		b.logger.Warn("strategy apply failed", zap.Error(err))
		return err
	}
	b.target = work
	b.state = StateApplied
	b.err = nil
	return nil
}
