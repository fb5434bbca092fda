// Package features is the static registry of student feature kinds and the
// catalog of actionable features a counseling strategy may target.
package features

import (
	"fmt"
	"slices"

	"github.com/abhisek/counsel/internal/table"
)

// Kind is the semantic type of a feature column.
type Kind string

const (
	KindBinary  Kind = "binary"  // two-valued, e.g. yes/no
	KindNumeric Kind = "numeric" // ordered scalar
	KindNominal Kind = "nominal" // unordered category
)

// AllKinds returns the kinds in display order.
func AllKinds() []Kind {
	return []Kind{KindBinary, KindNumeric, KindNominal}
}

// Registry classifies feature names by kind.
type Registry map[Kind]map[string]bool

// KindOf returns the kind a feature is classified under.
func (r Registry) KindOf(name string) (Kind, bool) {
	for _, k := range AllKinds() {
		if r[k][name] {
			return k, true
		}
	}
	return "", false
}

// Names returns the sorted feature names of one kind.
func (r Registry) Names(k Kind) []string {
	out := make([]string, 0, len(r[k]))
	for name := range r[k] {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Metadata returns a fresh copy of the feature kind classification.
func Metadata() Registry {
	r := make(Registry, len(kindSeed))
	for k, names := range kindSeed {
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[n] = true
		}
		r[k] = set
	}
	return r
}

// CategoricalFeatures returns the columns the baseline grader one-hot
// encodes, in encoder order.
func CategoricalFeatures() []string {
	return slices.Clone(categoricalSeed)
}

// Actionable describes a feature an advisor can target, with its valid
// input range and default target.
type Actionable struct {
	Name        string
	Description string
	Kind        Kind
	Min         float64  // numeric only, inclusive
	Max         float64  // numeric only, inclusive
	Options     []string // binary only
	Default     table.Value
}

// Validate checks that v is an acceptable target for the feature.
func (a Actionable) Validate(v table.Value) error {
	switch a.Kind {
	case KindNumeric:
		f, ok := v.Float()
		if !ok {
			return fmt.Errorf("%s: target %q is not numeric", a.Name, v.String())
		}
		if f < a.Min || f > a.Max {
			return fmt.Errorf("%s: target %v outside [%v, %v]", a.Name, f, a.Min, a.Max)
		}
	case KindBinary, KindNominal:
		if v.IsNum() || !slices.Contains(a.Options, v.String()) {
			return fmt.Errorf("%s: target %q not one of %v", a.Name, v.String(), a.Options)
		}
	default:
		return fmt.Errorf("%s: unknown kind %q", a.Name, a.Kind)
	}
	return nil
}

// RangeLabel renders the valid input range for display.
func (a Actionable) RangeLabel() string {
	if a.Kind == KindNumeric {
		return fmt.Sprintf("%g..%g", a.Min, a.Max)
	}
	return fmt.Sprintf("%v", a.Options)
}

// ActionableCatalog returns the actionable features in display order.
func ActionableCatalog() []Actionable {
	out := make([]Actionable, len(actionableSeed))
	for i, a := range actionableSeed {
		a.Options = slices.Clone(a.Options)
		out[i] = a
	}
	return out
}

// LookupActionable returns the catalog entry for name.
func LookupActionable(name string) (Actionable, bool) {
	for _, a := range actionableSeed {
		if a.Name == name {
			a.Options = slices.Clone(a.Options)
			return a, true
		}
	}
	return Actionable{}, false
}

// ActionableNames returns the catalog feature names in display order.
func ActionableNames() []string {
	out := make([]string, len(actionableSeed))
	for i, a := range actionableSeed {
		out[i] = a.Name
	}
	return out
}
