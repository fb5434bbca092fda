package table

import (
	"fmt"
	"slices"
)

// Series is a numeric vector keyed by row id, such as the FinalGrade labels.
type Series struct {
	index  []string
	values map[string]float64
}

// NewSeries pairs ids with values. Both slices must have the same length
// and ids must be unique.
func NewSeries(index []string, values []float64) (*Series, error) {
	if len(index) != len(values) {
		return nil, fmt.Errorf("series has %d ids and %d values", len(index), len(values))
	}
	m := make(map[string]float64, len(index))
	for i, id := range index {
		if _, dup := m[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateIndex, id)
		}
		m[id] = values[i]
	}
	return &Series{index: slices.Clone(index), values: m}, nil
}

// Len returns the number of entries.
func (s *Series) Len() int { return len(s.index) }

// Index returns a copy of the ids in order.
func (s *Series) Index() []string { return slices.Clone(s.index) }

// Get returns the value for an id.
func (s *Series) Get(id string) (float64, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Align returns the series values reordered to index. The id sets must be
// identical; otherwise an *AlignmentError lists the differences.
func (s *Series) Align(index []string) ([]float64, error) {
	out := make([]float64, len(index))
	seen := make(map[string]bool, len(index))
	var missing []string
	for i, id := range index {
		seen[id] = true
		v, ok := s.values[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out[i] = v
	}
	var extra []string
	for _, id := range s.index {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return nil, &AlignmentError{Missing: missing, Extra: extra}
	}
	return out, nil
}
