package advisor

import (
	"github.com/abhisek/counsel/internal/ranking"
	"github.com/abhisek/counsel/internal/store"
	"github.com/abhisek/counsel/internal/table"
)

// OutcomeFromStore converts a stored outcome back into a ranking outcome.
func OutcomeFromStore(o store.RunOutcome) ranking.Outcome {
	return ranking.Outcome{
		StudentID:       o.StudentID,
		Name:            ranking.Name{First: o.FirstName, Family: o.FamilyName},
		FinalGrade:      o.FinalGrade,
		ExpectedGrade:   o.ExpectedGrade,
		PerformanceGain: o.PerformanceGain,
		Complexity:      o.Complexity,
		ImpLevels:       o.ImpLevels,
	}
}

// ContextsFromRun builds student contexts for a saved run, in the order
// given. Quadrants are computed over all of outcomes. source supplies
// current feature values and may be nil.
func ContextsFromRun(run *store.Run, outcomes []ranking.Outcome, source *table.Table) []StudentContext {
	quadrants := ranking.Classify(outcomes)

	out := make([]StudentContext, 0, len(outcomes))
	for _, o := range outcomes {
		sc := StudentContext{
			StudentID:       o.StudentID,
			Name:            o.Name.String(),
			FinalGrade:      o.FinalGrade,
			ExpectedGrade:   o.ExpectedGrade,
			PerformanceGain: o.PerformanceGain,
			Complexity:      o.Complexity,
			Quadrant:        quadrants[o.StudentID],
		}
		if sc.Name == "" {
			sc.Name = o.StudentID
		}

		row, hasRow := -1, false
		if source != nil {
			row, hasRow = source.RowOf(o.StudentID)
		}
		for _, t := range run.Targets {
			c := Change{Feature: t.Feature, Target: t.Value, Effort: o.ImpLevels[t.Feature]}
			if hasRow {
				if v, err := source.At(row, t.Feature); err == nil {
					c.Current = v.String()
				}
			}
			sc.Changes = append(sc.Changes, c)
		}
		out = append(out, sc)
	}
	return out
}

// TargetChanges lists a run's targets for the cohort summary.
func TargetChanges(run *store.Run) []Change {
	out := make([]Change, len(run.Targets))
	for i, t := range run.Targets {
		out[i] = Change{Feature: t.Feature, Target: t.Value}
	}
	return out
}
