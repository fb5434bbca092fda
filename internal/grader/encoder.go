package grader

import (
	"fmt"
	"slices"

	"github.com/abhisek/counsel/internal/table"
)

// UnknownPolicy decides what the encoder does with a category it was not
// fitted on.
type UnknownPolicy string

const (
	// UnknownError fails the transform.
	UnknownError UnknownPolicy = "error"
	// UnknownIgnore encodes the value as all zeros for that column.
	UnknownIgnore UnknownPolicy = "ignore"
)

// ParseUnknownPolicy validates a policy name. Empty means UnknownError.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch UnknownPolicy(s) {
	case "", UnknownError:
		return UnknownError, nil
	case UnknownIgnore:
		return UnknownIgnore, nil
	default:
		return "", fmt.Errorf("unknown category policy %q: must be error or ignore", s)
	}
}

// OneHotEncoder expands categorical columns into one indicator column per
// fitted category, named "{column}_{category}".
type OneHotEncoder struct {
	columns    []string
	categories map[string][]string
	unknown    UnknownPolicy
}

// NewOneHotEncoder creates an encoder from fitted categories. columns fixes
// the output order; every column needs at least one category.
func NewOneHotEncoder(columns []string, categories map[string][]string, unknown UnknownPolicy) (*OneHotEncoder, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("encoder needs at least one column")
	}
	e := &OneHotEncoder{
		columns:    slices.Clone(columns),
		categories: make(map[string][]string, len(columns)),
		unknown:    unknown,
	}
	for _, c := range columns {
		cats := categories[c]
		if len(cats) == 0 {
			return nil, fmt.Errorf("encoder column %q has no categories", c)
		}
		if _, dup := e.categories[c]; dup {
			return nil, fmt.Errorf("encoder column %q listed twice", c)
		}
		e.categories[c] = slices.Clone(cats)
	}
	return e, nil
}

// Columns returns the raw categorical columns the encoder consumes.
func (e *OneHotEncoder) Columns() []string { return slices.Clone(e.columns) }

// Unknown returns the active unknown-category policy.
func (e *OneHotEncoder) Unknown() UnknownPolicy { return e.unknown }

// WithUnknown returns a copy of the encoder using policy p.
func (e *OneHotEncoder) WithUnknown(p UnknownPolicy) *OneHotEncoder {
	cp := *e
	cp.unknown = p
	return &cp
}

// FeatureNamesOut returns the encoded column names in output order.
func (e *OneHotEncoder) FeatureNamesOut() []string {
	var out []string
	for _, c := range e.columns {
		for _, cat := range e.categories[c] {
			out = append(out, encodedName(c, cat))
		}
	}
	return out
}

// Transform returns a new table where the raw categorical columns are
// replaced by their indicator columns. t is left untouched.
func (e *OneHotEncoder) Transform(t *table.Table) (*table.Table, error) {
	var missing []string
	for _, c := range e.columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &ModelInputError{Missing: missing}
	}

	out := t.Drop(e.columns...)
	index := t.Index()
	for _, c := range e.columns {
		vals, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		cats := e.categories[c]
		encoded := make([][]float64, len(cats))
		for k := range encoded {
			encoded[k] = make([]float64, len(vals))
		}
		for i, v := range vals {
			k := slices.Index(cats, v.String())
			if k < 0 {
				if e.unknown == UnknownIgnore {
					continue
				}
				return nil, &UnknownCategoryError{Column: c, Value: v.String(), Row: index[i]}
			}
			encoded[k][i] = 1
		}
		for k, cat := range cats {
			if err := out.SetFloats(encodedName(c, cat), encoded[k]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func encodedName(column, category string) string {
	return column + "_" + category
}
