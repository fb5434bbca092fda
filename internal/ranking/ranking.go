// Package ranking turns an applied strategy's target table into per-student
// outcomes that can be filtered, sorted and bucketed for counselors.
package ranking

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/abhisek/counsel/internal/strategy"
	"github.com/abhisek/counsel/internal/table"
)

// Name is a student's display name.
type Name struct {
	First  string
	Family string
}

func (n Name) String() string { return strings.TrimSpace(n.First + " " + n.Family) }

// Outcome is one student's result under a strategy.
type Outcome struct {
	StudentID       string
	Name            Name
	FinalGrade      float64
	ExpectedGrade   float64
	PerformanceGain float64
	Complexity      float64
	// ImpLevels maps each actionable feature to the student's distance
	// from its target.
	ImpLevels map[string]float64
}

// Outcomes reads the derived columns of target, in index order. names may
// be nil.
func Outcomes(target *table.Table, y *table.Series, names map[string]Name) ([]Outcome, error) {
	expected, err := target.Floats(strategy.ColExpectedGrade)
	if err != nil {
		return nil, err
	}
	gain, err := target.Floats(strategy.ColPerformanceGain)
	if err != nil {
		return nil, err
	}
	complexity, err := target.Floats(strategy.ColComplexity)
	if err != nil {
		return nil, err
	}
	index := target.Index()
	final, err := y.Align(index)
	if err != nil {
		return nil, err
	}

	levels := map[string][]float64{}
	for _, c := range target.Columns() {
		feature, ok := strings.CutSuffix(c, strategy.ImpLevelSuffix)
		if !ok {
			continue
		}
		if levels[feature], err = target.Floats(c); err != nil {
			return nil, err
		}
	}

	out := make([]Outcome, len(index))
	for i, id := range index {
		o := Outcome{
			StudentID:       id,
			Name:            names[id],
			FinalGrade:      final[i],
			ExpectedGrade:   expected[i],
			PerformanceGain: gain[i],
			Complexity:      complexity[i],
			ImpLevels:       make(map[string]float64, len(levels)),
		}
		for f, l := range levels {
			o.ImpLevels[f] = l[i]
		}
		out[i] = o
	}
	return out, nil
}

// Metric selects an outcome value to sort or filter on.
type Metric string

const (
	MetricGain       Metric = "gain"
	MetricComplexity Metric = "complexity"
	MetricExpected   Metric = "expected"
	MetricFinal      Metric = "final"
)

// Metrics returns every metric in display order.
func Metrics() []Metric {
	return []Metric{MetricGain, MetricComplexity, MetricExpected, MetricFinal}
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Metrics(), m) {
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q (want one of gain, complexity, expected, final)", s)
}

// Value returns the outcome's value for m.
func (o Outcome) Value(m Metric) float64 {
	switch m {
	case MetricGain:
		return o.PerformanceGain
	case MetricComplexity:
		return o.Complexity
	case MetricExpected:
		return o.ExpectedGrade
	case MetricFinal:
		return o.FinalGrade
	default:
		return math.NaN()
	}
}

// Range is an inclusive bound on one metric. Use math.Inf for open ends.
type Range struct {
	Metric Metric
	Min    float64
	Max    float64
}

// AtLeast returns a range with only a lower bound.
func AtLeast(m Metric, min float64) Range { return Range{Metric: m, Min: min, Max: math.Inf(1)} }

// AtMost returns a range with only an upper bound.
func AtMost(m Metric, max float64) Range { return Range{Metric: m, Min: math.Inf(-1), Max: max} }

func (r Range) contains(o Outcome) bool {
	v := o.Value(r.Metric)
	return v >= r.Min && v <= r.Max
}

// Filter returns the outcomes inside every range, keeping their order.
func Filter(outcomes []Outcome, ranges ...Range) []Outcome {
	out := make([]Outcome, 0, len(outcomes))
next:
	for _, o := range outcomes {
		for _, r := range ranges {
			if !r.contains(o) {
				continue next
			}
		}
		out = append(out, o)
	}
	return out
}

// Sort returns a copy of outcomes ordered by m. Equal values keep their
// input order.
func Sort(outcomes []Outcome, m Metric, ascending bool) []Outcome {
	out := slices.Clone(outcomes)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].Value(m) < out[j].Value(m)
		}
		return out[i].Value(m) > out[j].Value(m)
	})
	return out
}

// Top returns at most n outcomes. n <= 0 returns all of them.
func Top(outcomes []Outcome, n int) []Outcome {
	if n <= 0 || n >= len(outcomes) {
		return outcomes
	}
	return outcomes[:n]
}
