// Package advisor drafts counseling briefs for students a strategy run
// prioritized. The strategy decides what should change; the brief explains
// it in a counselor's words.
package advisor

import (
	"fmt"

	"github.com/abhisek/counsel/internal/ranking"
)

// Change is one strategy target as it applies to a single student.
type Change struct {
	Feature string
	Current string // empty when the source row is not available
	Target  string
	Effort  float64 // the feature's improvement level for this student
}

// StudentContext is everything the advisor knows about one student.
type StudentContext struct {
	StudentID       string
	Name            string
	FinalGrade      float64
	ExpectedGrade   float64
	PerformanceGain float64
	Complexity      float64
	Quadrant        ranking.Quadrant
	Changes         []Change
}

// Action is a recommendation tied to one strategy feature.
type Action struct {
	Feature        string `json:"feature"`
	Recommendation string `json:"recommendation"`
}

// Brief is a counseling brief for one student.
type Brief struct {
	StudentID string
	Summary   string
	Actions   []Action
	Risks     []string
	Model     string

	// Dropped counts actions that named features outside the strategy.
	Dropped int
}

// CohortInput describes a whole run for the cohort summary.
type CohortInput struct {
	Strategy string
	Targets  []Change // Current and Effort unused
	Summary  ranking.Summary
	Top      []StudentContext
}

// CohortSummary is an overview of a run for staff meetings.
type CohortSummary struct {
	Overview string
	Themes   []string
}

// BriefError reports a brief that could not be produced.
type BriefError struct {
	StudentID string
	Err       error
}

func (e *BriefError) Error() string {
	return fmt.Sprintf("brief for %s: %v", e.StudentID, e.Err)
}

func (e *BriefError) Unwrap() error { return e.Err }
