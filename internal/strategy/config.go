package strategy

import (
	"fmt"
	"os"
	"slices"

	"github.com/abhisek/counsel/internal/features"
	"github.com/abhisek/counsel/internal/table"
	"gopkg.in/yaml.v3"
)

// Target is one (feature, target value) pair of a strategy.
type Target struct {
	Feature string
	Value   table.Value
}

// Config is the ordered set of targets a strategy applies. Its key order
// is the order implevel columns are written in.
type Config struct {
	targets []Target
}

// NewConfig builds a config from ordered targets. Duplicate features are
// rejected.
func NewConfig(targets ...Target) (Config, error) {
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if t.Feature == "" {
			return Config{}, &ConfigurationError{Reason: "empty feature name"}
		}
		if seen[t.Feature] {
			return Config{}, &ConfigurationError{Feature: t.Feature, Reason: "listed more than once"}
		}
		seen[t.Feature] = true
	}
	return Config{targets: slices.Clone(targets)}, nil
}

// Len returns the number of targets.
func (c Config) Len() int { return len(c.targets) }

// Keys returns the configured features in order.
func (c Config) Keys() []string {
	out := make([]string, len(c.targets))
	for i, t := range c.targets {
		out[i] = t.Feature
	}
	return out
}

// Targets returns a copy of the ordered pairs.
func (c Config) Targets() []Target { return slices.Clone(c.targets) }

// Get returns the target for feature.
func (c Config) Get(feature string) (table.Value, bool) {
	for _, t := range c.targets {
		if t.Feature == feature {
			return t.Value, true
		}
	}
	return table.Value{}, false
}

// With returns a copy of c with feature's target set to v. A new feature is
// appended at the end.
func (c Config) With(feature string, v table.Value) Config {
	out := Config{targets: slices.Clone(c.targets)}
	for i, t := range out.targets {
		if t.Feature == feature {
			out.targets[i].Value = v
			return out
		}
	}
	out.targets = append(out.targets, Target{Feature: feature, Value: v})
	return out
}

// Validate checks every target. Catalog features must hit the catalog's
// range or options; other classified features only need a target of the
// right type.
func (c Config) Validate() error {
	if len(c.targets) == 0 {
		return &ConfigurationError{Reason: "no targets configured"}
	}
	reg := features.Metadata()
	for _, t := range c.targets {
		if err := validateTarget(reg, t); err != nil {
			return err
		}
	}
	return nil
}

func validateTarget(reg features.Registry, t Target) error {
	if a, ok := features.LookupActionable(t.Feature); ok {
		if err := a.Validate(t.Value); err != nil {
			return &ConfigurationError{Feature: t.Feature, Err: err}
		}
		return nil
	}
	kind, ok := reg.KindOf(t.Feature)
	if !ok {
		return &ConfigurationError{Feature: t.Feature, Reason: "feature has no metadata kind"}
	}
	if kind == features.KindNumeric && !t.Value.IsNum() {
		return &ConfigurationError{Feature: t.Feature, Reason: fmt.Sprintf("numeric feature needs a numeric target, got %q", t.Value.String())}
	}
	if kind != features.KindNumeric && t.Value.IsNum() {
		return &ConfigurationError{Feature: t.Feature, Reason: fmt.Sprintf("%s feature needs a category target, got %s", kind, t.Value.String())}
	}
	return nil
}

// DefaultConfig returns the default counseling targets: maximal study time,
// no absences, minimal alcohol use, maximal free time and every form of
// support switched on.
func DefaultConfig() Config {
	return Config{targets: []Target{
		{"studytime", table.Num(4)},
		{"absences", table.Num(0)},
		{"Dalc", table.Num(1)},
		{"Walc", table.Num(1)},
		{"freetime", table.Num(5)},
		{"schoolsup", table.Str("yes")},
		{"famsup", table.Str("yes")},
		{"paid", table.Str("yes")},
	}}
}

// ConfigFromCatalog builds a config from the catalog's default targets.
func ConfigFromCatalog() Config {
	catalog := features.ActionableCatalog()
	targets := make([]Target, len(catalog))
	for i, a := range catalog {
		targets[i] = Target{Feature: a.Name, Value: a.Default}
	}
	return Config{targets: targets}
}

// CheckDefaultConfig verifies DefaultConfig covers exactly the actionable
// catalog with valid targets.
func CheckDefaultConfig() error {
	def := DefaultConfig()
	if err := def.Validate(); err != nil {
		return err
	}
	keys := def.Keys()
	slices.Sort(keys)
	want := features.ActionableNames()
	slices.Sort(want)
	if !slices.Equal(keys, want) {
		return fmt.Errorf("default strategy covers %v, catalog has %v", keys, want)
	}
	return nil
}

// LoadConfigFile reads a YAML mapping of feature to target value. Keys keep
// their file order.
func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read strategy file: %w", err)
	}
	cfg, err := ParseConfig(raw)
	if err != nil {
		return Config{}, fmt.Errorf("strategy file %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML strategy document and validates it.
func ParseConfig(raw []byte) (Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, &ConfigurationError{Reason: "malformed YAML", Err: err}
	}
	if len(doc.Content) == 0 {
		return Config{}, &ConfigurationError{Reason: "empty strategy document"}
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return Config{}, &ConfigurationError{Reason: fmt.Sprintf("line %d: expected a feature: target mapping", m.Line)}
	}

	targets := make([]Target, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return Config{}, &ConfigurationError{Feature: k.Value, Reason: fmt.Sprintf("line %d: target must be a scalar", v.Line)}
		}
		targets = append(targets, Target{Feature: k.Value, Value: scalarValue(v)})
	}
	cfg, err := NewConfig(targets...)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// scalarValue keeps quoted scalars as strings so "4" and 4 can be told
// apart; bare yes/no stay categorical.
func scalarValue(n *yaml.Node) table.Value {
	switch n.Tag {
	case "!!int", "!!float":
		return table.ParseValue(n.Value)
	default:
		return table.Str(n.Value)
	}
}
