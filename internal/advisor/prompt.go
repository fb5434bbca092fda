package advisor

import (
	"fmt"
	"strings"

	"github.com/abhisek/counsel/internal/features"
)

const briefSystemPrompt = `You are an experienced secondary-school counselor. A grade model has estimated how much a student's final grade (0-20 scale) could improve if some habits and supports changed. Write a short, practical brief the counselor can use in a one-on-one meeting. Be specific and kind. Never invent data that is not given.`

const cohortSystemPrompt = `You are a head of student support summarizing an improvement plan for a staff meeting. Be concise and concrete.`

func describeFeature(name string) string {
	if a, ok := features.LookupActionable(name); ok && a.Description != "" {
		return a.Description
	}
	return name
}

func buildBriefUserMessage(sc StudentContext, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Student: %s (%s)\n", sc.Name, sc.StudentID)
	fmt.Fprintf(&b, "Final grade: %.1f\n", sc.FinalGrade)
	fmt.Fprintf(&b, "Expected grade under the plan: %.1f (gain %+.1f)\n", sc.ExpectedGrade, sc.PerformanceGain)
	fmt.Fprintf(&b, "Effort score: %.0f\n", sc.Complexity)
	if sc.Quadrant != "" {
		fmt.Fprintf(&b, "Priority: %s\n", sc.Quadrant)
	}

	b.WriteString("\nPlan:\n")
	listed := 0
	for _, c := range sc.Changes {
		if c.Effort == 0 && !cfg.IncludeZeroDelta {
			continue
		}
		listed++
		current := c.Current
		if current == "" {
			current = "?"
		}
		fmt.Fprintf(&b, "- %s (%s): %s -> %s, effort %.0f\n", c.Feature, describeFeature(c.Feature), current, c.Target, c.Effort)
	}
	if listed == 0 {
		b.WriteString("None. The student already meets every target.\n")
	}

	fmt.Fprintf(&b, `
Instructions:
1. Summarize the student's situation and the expected gain in 2-3 sentences.
2. Give at most %d actions. Each action must name one feature from the plan above, spelled exactly as shown.
3. Prefer actions with a small effort and a large expected effect.
4. List up to 3 risks. Use an empty list if there are none.
5. Plain text only. No markdown.`, cfg.MaxActions)

	return b.String()
}

func buildCohortUserMessage(in CohortInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Strategy: %s\n", in.Strategy)
	b.WriteString("Targets:\n")
	for _, t := range in.Targets {
		fmt.Fprintf(&b, "- %s = %s\n", t.Feature, t.Target)
	}
	fmt.Fprintf(&b, "\nStudents: %d\nMean gain: %.2f\nMax gain: %.2f\nMean effort: %.1f\n",
		in.Summary.Count, in.Summary.MeanGain, in.Summary.MaxGain, in.Summary.MeanComplexity)
	for q, n := range in.Summary.Quadrants {
		fmt.Fprintf(&b, "%s: %d\n", q, n)
	}

	if len(in.Top) > 0 {
		b.WriteString("\nHighest-priority students:\n")
		for _, sc := range in.Top {
			var needs []string
			for _, c := range sc.Changes {
				if c.Effort > 0 {
					needs = append(needs, c.Feature)
				}
			}
			fmt.Fprintf(&b, "- %s: gain %+.1f, effort %.0f, needs %s\n",
				sc.StudentID, sc.PerformanceGain, sc.Complexity, strings.Join(needs, ", "))
		}
	}

	b.WriteString(`
Instructions:
Write one short overview paragraph and list 2-5 recurring themes. Do not name individual students.`)
	return b.String()
}
