package grader

import (
	"fmt"
	"strings"
)

// ModelInputError indicates the feature table handed to a model is missing
// columns the model needs, or holds values it cannot use.
type ModelInputError struct {
	Missing []string
	Err     error
}

func (e *ModelInputError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("model input missing columns: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid model input: %v", e.Err)
}

func (e *ModelInputError) Unwrap() error { return e.Err }

// UnknownCategoryError indicates a categorical value the encoder was not
// fitted on.
type UnknownCategoryError struct {
	Column string
	Value  string
	Row    string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q in column %q (student %s)", e.Value, e.Column, e.Row)
}

// ArtifactError indicates a model artifact could not be loaded.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("load artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }
