package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateIndex is returned when a row index contains the same id twice.
var ErrDuplicateIndex = errors.New("duplicate row id")

// MissingColumnsError reports columns that were requested but not present.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// AlignmentError reports ids that are present on one side of an alignment
// but not the other.
type AlignmentError struct {
	Missing []string // ids in the target index with no value
	Extra   []string // ids with a value but absent from the target index
}

func (e *AlignmentError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("no label for %s", summarizeIDs(e.Missing)))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected label for %s", summarizeIDs(e.Extra)))
	}
	return "index alignment failed: " + strings.Join(parts, "; ")
}

func summarizeIDs(ids []string) string {
	const show = 5
	if len(ids) <= show {
		return strings.Join(ids, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(ids[:show], ", "), len(ids)-show)
}
