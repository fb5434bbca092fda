package ranking

import (
	"testing"

	"github.com/abhisek/counsel/internal/strategy"
	"github.com/abhisek/counsel/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcome(id string, gain, complexity float64) Outcome {
	return Outcome{StudentID: id, PerformanceGain: gain, Complexity: complexity, ExpectedGrade: 10 + gain, FinalGrade: 10}
}

func ids(outcomes []Outcome) []string {
	out := make([]string, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.StudentID
	}
	return out
}

func TestOutcomes(t *testing.T) {
	target, err := table.New([]string{"s1", "s2"})
	require.NoError(t, err)
	require.NoError(t, target.SetFloats("studytime", []float64{4, 4}))
	require.NoError(t, target.SetFloats(strategy.ImpLevelColumn("studytime"), []float64{3, 0}))
	require.NoError(t, target.SetFloats(strategy.ColExpectedGrade, []float64{14, 15}))
	require.NoError(t, target.SetFloats(strategy.ColPerformanceGain, []float64{6, -1}))
	require.NoError(t, target.SetFloats(strategy.ColComplexity, []float64{3, 0}))
	y, err := table.NewSeries([]string{"s2", "s1"}, []float64{16, 8})
	require.NoError(t, err)

	got, err := Outcomes(target, y, map[string]Name{"s1": {First: "Ana", Family: "Silva"}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "s1", got[0].StudentID)
	assert.Equal(t, "Ana Silva", got[0].Name.String())
	assert.Equal(t, 8.0, got[0].FinalGrade)
	assert.Equal(t, 14.0, got[0].ExpectedGrade)
	assert.Equal(t, map[string]float64{"studytime": 3}, got[0].ImpLevels)
	assert.Equal(t, 16.0, got[1].FinalGrade)
	assert.Equal(t, "", got[1].Name.String())
}

func TestOutcomes_RequiresDerivedColumns(t *testing.T) {
	target, err := table.New([]string{"s1"})
	require.NoError(t, err)
	y, err := table.NewSeries([]string{"s1"}, []float64{1})
	require.NoError(t, err)
	_, err = Outcomes(target, y, nil)
	assert.Error(t, err)
}

func TestFilter_Inclusive(t *testing.T) {
	all := []Outcome{outcome("a", 1, 10), outcome("b", 4, 25), outcome("c", 8, 26), outcome("d", 4, 3)}

	got := Filter(all, AtLeast(MetricGain, 4), AtMost(MetricComplexity, 25))
	assert.Equal(t, []string{"b", "d"}, ids(got))

	got = Filter(all, Range{Metric: MetricComplexity, Min: 10, Max: 26})
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))

	assert.Len(t, Filter(all), 4)
}

func TestSort_Stable(t *testing.T) {
	all := []Outcome{outcome("a", 2, 5), outcome("b", 7, 1), outcome("c", 2, 9), outcome("d", 7, 4)}

	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(Sort(all, MetricGain, false)))
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(Sort(all, MetricGain, true)))
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(Sort(all, MetricComplexity, true)))
	// Input order is untouched.
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(all))
}

func TestTop(t *testing.T) {
	all := []Outcome{outcome("a", 1, 1), outcome("b", 2, 2), outcome("c", 3, 3)}
	assert.Equal(t, []string{"a", "b"}, ids(Top(all, 2)))
	assert.Len(t, Top(all, 0), 3)
	assert.Len(t, Top(all, 10), 3)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric(" Gain ")
	require.NoError(t, err)
	assert.Equal(t, MetricGain, m)
	_, err = ParseMetric("effort")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	all := []Outcome{
		outcome("quick", 9, 1),
		outcome("major", 9, 20),
		outcome("low", 1, 1),
		outcome("skip", 1, 20),
		outcome("mid", 5, 10), // sits on both medians
	}
	got := Classify(all)
	assert.Equal(t, QuickWin, got["quick"])
	assert.Equal(t, MajorEffort, got["major"])
	assert.Equal(t, LowPriority, got["low"])
	assert.Equal(t, NotWorthIt, got["skip"])
	assert.Equal(t, MajorEffort, got["mid"])

	assert.Empty(t, Classify(nil))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Outcome{outcome("a", 2, 4), outcome("b", -1, 0), outcome("c", 5, 8)})
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 2.0, s.MeanGain, 1e-12)
	assert.InDelta(t, 4.0, s.MeanComplexity, 1e-12)
	assert.Equal(t, 5.0, s.MaxGain)

	total := 0
	for _, n := range s.Quadrants {
		total += n
	}
	assert.Equal(t, 3, total)

	empty := Summarize(nil)
	assert.Zero(t, empty.Count)
}
