package features

import (
	"fmt"
	"strings"
)

// Validate checks the registry and the actionable catalog against each
// other. It returns one error listing every problem found.
func Validate() error {
	return validate(Metadata(), actionableSeed, categoricalSeed)
}

func validate(reg Registry, catalog []Actionable, categorical []string) error {
	var errs []string

	// A feature belongs to exactly one kind.
	seen := make(map[string]Kind)
	for _, k := range AllKinds() {
		for name := range reg[k] {
			if prev, ok := seen[name]; ok {
				errs = append(errs, fmt.Sprintf("feature %q classified as both %s and %s", name, prev, k))
			}
			seen[name] = k
		}
	}

	names := make(map[string]bool, len(catalog))
	for _, a := range catalog {
		if names[a.Name] {
			errs = append(errs, fmt.Sprintf("duplicate actionable feature %q", a.Name))
		}
		names[a.Name] = true

		kind, ok := reg.KindOf(a.Name)
		if !ok {
			errs = append(errs, fmt.Sprintf("actionable feature %q has no kind", a.Name))
			continue
		}
		if kind != a.Kind {
			errs = append(errs, fmt.Sprintf("actionable feature %q is %s in the catalog but %s in the registry", a.Name, a.Kind, kind))
		}
		if a.Kind == KindNumeric && a.Min > a.Max {
			errs = append(errs, fmt.Sprintf("actionable feature %q: min %v > max %v", a.Name, a.Min, a.Max))
		}
		if a.Kind == KindBinary && len(a.Options) != 2 {
			errs = append(errs, fmt.Sprintf("actionable feature %q: binary needs 2 options, got %d", a.Name, len(a.Options)))
		}
		if err := a.Validate(a.Default); err != nil {
			errs = append(errs, fmt.Sprintf("default: %v", err))
		}
	}

	for _, c := range categorical {
		kind, ok := reg.KindOf(c)
		if !ok || kind == KindNumeric {
			errs = append(errs, fmt.Sprintf("encoded feature %q is not binary or nominal", c))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("feature registry validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
