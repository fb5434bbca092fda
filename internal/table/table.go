// Package table provides the student-indexed, column-ordered table the
// strategy engine and grader models operate on.
package table

import (
	"fmt"
	"slices"
)

// Table is an in-memory table keyed by a unique, ordered row index.
// Columns keep their insertion order. A Table is not safe for concurrent
// mutation.
type Table struct {
	index   []string
	pos     map[string]int
	columns []string
	data    map[string][]Value
}

// New creates an empty table over the given row ids.
func New(index []string) (*Table, error) {
	pos := make(map[string]int, len(index))
	for i, id := range index {
		if _, dup := pos[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateIndex, id)
		}
		pos[id] = i
	}
	return &Table{
		index: slices.Clone(index),
		pos:   pos,
		data:  make(map[string][]Value),
	}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

// Index returns a copy of the row ids in order.
func (t *Table) Index() []string { return slices.Clone(t.index) }

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Has reports whether the table has the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.data[col]
	return ok
}

// RowOf returns the position of a row id.
func (t *Table) RowOf(id string) (int, bool) {
	i, ok := t.pos[id]
	return i, ok
}

// Column returns a copy of a column's values.
func (t *Table) Column(col string) ([]Value, error) {
	vals, ok := t.data[col]
	if !ok {
		return nil, &MissingColumnsError{Columns: []string{col}}
	}
	return slices.Clone(vals), nil
}

// Floats returns a column as numbers. Any categorical cell is an error.
func (t *Table) Floats(col string) ([]float64, error) {
	vals, ok := t.data[col]
	if !ok {
		return nil, &MissingColumnsError{Columns: []string{col}}
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, ok := v.Float()
		if !ok {
			return nil, fmt.Errorf("column %q row %q: %q is not numeric", col, t.index[i], v.String())
		}
		out[i] = f
	}
	return out, nil
}

// At returns the cell at row position i.
func (t *Table) At(i int, col string) (Value, error) {
	vals, ok := t.data[col]
	if !ok {
		return Value{}, &MissingColumnsError{Columns: []string{col}}
	}
	if i < 0 || i >= len(vals) {
		return Value{}, fmt.Errorf("row %d out of range [0, %d)", i, len(vals))
	}
	return vals[i], nil
}

// Set overwrites the cell at row position i.
func (t *Table) Set(i int, col string, v Value) error {
	vals, ok := t.data[col]
	if !ok {
		return &MissingColumnsError{Columns: []string{col}}
	}
	if i < 0 || i >= len(vals) {
		return fmt.Errorf("row %d out of range [0, %d)", i, len(vals))
	}
	vals[i] = v
	return nil
}

// SetColumn adds a column, or replaces it in place if it already exists.
// The table takes a copy of values.
func (t *Table) SetColumn(col string, values []Value) error {
	if len(values) != len(t.index) {
		return fmt.Errorf("column %q has %d values, table has %d rows", col, len(values), len(t.index))
	}
	if _, ok := t.data[col]; !ok {
		t.columns = append(t.columns, col)
	}
	t.data[col] = slices.Clone(values)
	return nil
}

// SetFloats is SetColumn for numeric data.
func (t *Table) SetFloats(col string, values []float64) error {
	vals := make([]Value, len(values))
	for i, f := range values {
		vals[i] = Num(f)
	}
	return t.SetColumn(col, vals)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		index:   slices.Clone(t.index),
		pos:     make(map[string]int, len(t.pos)),
		columns: slices.Clone(t.columns),
		data:    make(map[string][]Value, len(t.data)),
	}
	for id, i := range t.pos {
		out.pos[id] = i
	}
	for col, vals := range t.data {
		out.data[col] = slices.Clone(vals)
	}
	return out
}

// Select returns a new table holding only the named columns, in the
// order given.
func (t *Table) Select(cols ...string) (*Table, error) {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	out := t.empty()
	for _, c := range cols {
		if out.Has(c) {
			continue
		}
		out.columns = append(out.columns, c)
		out.data[c] = slices.Clone(t.data[c])
	}
	return out, nil
}

// Drop returns a new table without the named columns. Unknown names are
// ignored.
func (t *Table) Drop(cols ...string) *Table {
	out := t.empty()
	for _, c := range t.columns {
		if slices.Contains(cols, c) {
			continue
		}
		out.columns = append(out.columns, c)
		out.data[c] = slices.Clone(t.data[c])
	}
	return out
}

// empty returns a table with the same index and no columns.
func (t *Table) empty() *Table {
	out := &Table{
		index: slices.Clone(t.index),
		pos:   make(map[string]int, len(t.pos)),
		data:  make(map[string][]Value),
	}
	for id, i := range t.pos {
		out.pos[id] = i
	}
	return out
}
