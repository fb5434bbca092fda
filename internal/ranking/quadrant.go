package ranking

import (
	"slices"
)

// Quadrant buckets a student by gain and effort relative to the cohort.
type Quadrant string

const (
	QuickWin    Quadrant = "quick-win"    // high gain, low effort
	MajorEffort Quadrant = "major-effort" // high gain, high effort
	LowPriority Quadrant = "low-priority" // low gain, low effort
	NotWorthIt  Quadrant = "not-worth-it" // low gain, high effort
)

// Quadrants returns every quadrant in priority order.
func Quadrants() []Quadrant {
	return []Quadrant{QuickWin, MajorEffort, LowPriority, NotWorthIt}
}

// Classify splits outcomes at the cohort median of gain and complexity.
// A gain equal to the median counts as high; a complexity equal to the
// median counts as high.
func Classify(outcomes []Outcome) map[string]Quadrant {
	out := make(map[string]Quadrant, len(outcomes))
	if len(outcomes) == 0 {
		return out
	}
	gains := make([]float64, len(outcomes))
	costs := make([]float64, len(outcomes))
	for i, o := range outcomes {
		gains[i] = o.PerformanceGain
		costs[i] = o.Complexity
	}
	mg, mc := median(gains), median(costs)

	for _, o := range outcomes {
		high := o.PerformanceGain >= mg
		hard := o.Complexity >= mc
		switch {
		case high && !hard:
			out[o.StudentID] = QuickWin
		case high:
			out[o.StudentID] = MajorEffort
		case !hard:
			out[o.StudentID] = LowPriority
		default:
			out[o.StudentID] = NotWorthIt
		}
	}
	return out
}

func median(vals []float64) float64 {
	s := slices.Clone(vals)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Summary aggregates a set of outcomes.
type Summary struct {
	Count          int
	MeanGain       float64
	MeanComplexity float64
	MaxGain        float64
	// Quadrants counts students per quadrant.
	Quadrants map[Quadrant]int
}

// Summarize computes aggregate statistics over outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Count: len(outcomes), Quadrants: map[Quadrant]int{}}
	if len(outcomes) == 0 {
		return s
	}
	s.MaxGain = outcomes[0].PerformanceGain
	for _, o := range outcomes {
		s.MeanGain += o.PerformanceGain
		s.MeanComplexity += o.Complexity
		s.MaxGain = max(s.MaxGain, o.PerformanceGain)
	}
	s.MeanGain /= float64(len(outcomes))
	s.MeanComplexity /= float64(len(outcomes))
	for _, q := range Classify(outcomes) {
		s.Quadrants[q]++
	}
	return s
}
