package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/counsel/internal/llm"
	"github.com/abhisek/counsel/internal/ranking"
	"github.com/abhisek/counsel/internal/store"
	"github.com/abhisek/counsel/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anaContext() StudentContext {
	return StudentContext{
		StudentID:       "S001",
		Name:            "Ana Silva",
		FinalGrade:      9,
		ExpectedGrade:   13.5,
		PerformanceGain: 4.5,
		Complexity:      25,
		Quadrant:        ranking.QuickWin,
		Changes: []Change{
			{Feature: "studytime", Current: "1", Target: "4", Effort: 3},
			{Feature: "absences", Current: "16", Target: "0", Effort: 16},
			{Feature: "famsup", Current: "yes", Target: "yes", Effort: 0},
		},
	}
}

func briefJSON(actions ...Action) llm.MockResponse {
	if actions == nil {
		actions = []Action{}
	}
	return llm.MockJSON(map[string]any{
		"summary": "  Ana could gain four points.  ",
		"actions": actions,
		"risks":   []string{"part-time job"},
	})
}

func TestBrief(t *testing.T) {
	mock := llm.NewMockProvider(briefJSON(
		Action{Feature: "studytime", Recommendation: "Plan two evening study blocks."},
		Action{Feature: "internet", Recommendation: "Get home internet."},
		Action{Feature: " absences ", Recommendation: "Weekly attendance check-in."},
	))
	svc := NewService(mock, DefaultConfig(), nil)

	b, err := svc.Brief(context.Background(), anaContext())
	require.NoError(t, err)

	assert.Equal(t, "S001", b.StudentID)
	assert.Equal(t, "Ana could gain four points.", b.Summary)
	assert.Equal(t, []string{"part-time job"}, b.Risks)
	assert.Equal(t, "mock", b.Model)
	assert.Equal(t, 1, b.Dropped)
	require.Len(t, b.Actions, 2)
	assert.Equal(t, "studytime", b.Actions[0].Feature)
	assert.Equal(t, "absences", b.Actions[1].Feature)

	req := mock.Calls[0]
	assert.Equal(t, BriefSchema, req.Schema)
	assert.Contains(t, req.Messages[0].Content, "Ana Silva (S001)")
	assert.Contains(t, req.Messages[0].Content, "absences (number of school absences): 16 -> 0, effort 16")
	assert.NotContains(t, req.Messages[0].Content, "famsup", "features already at target are omitted")
}

func TestBrief_CapsActions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxActions = 1
	mock := llm.NewMockProvider(briefJSON(
		Action{Feature: "studytime", Recommendation: "a"},
		Action{Feature: "absences", Recommendation: "b"},
	))

	b, err := NewService(mock, cfg, nil).Brief(context.Background(), anaContext())
	require.NoError(t, err)
	assert.Len(t, b.Actions, 1)
}

func TestBrief_InvalidResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(map[string]any{"summary": "no actions"}))

	_, err := NewService(mock, DefaultConfig(), nil).Brief(context.Background(), anaContext())
	var invalid *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestBriefTop_CollectsErrors(t *testing.T) {
	mock := llm.NewMockProvider(
		briefJSON(),
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
		briefJSON(),
		briefJSON(),
	)
	svc := NewService(mock, DefaultConfig(), nil)

	contexts := make([]StudentContext, 4)
	for i, id := range []string{"S001", "S002", "S003", "S004"} {
		contexts[i] = anaContext()
		contexts[i].StudentID = id
	}

	briefs, err := svc.BriefTop(context.Background(), contexts, 3)
	require.Error(t, err)
	assert.Equal(t, 3, mock.CallCount())
	require.Len(t, briefs, 2)
	assert.Equal(t, "S001", briefs[0].StudentID)
	assert.Equal(t, "S003", briefs[1].StudentID)

	var be *BriefError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "S002", be.StudentID)
	var unavailable *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func TestBriefTop_StopsOnCancel(t *testing.T) {
	mock := llm.NewMockProvider(briefJSON(), briefJSON())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	briefs, err := NewService(mock, DefaultConfig(), nil).BriefTop(ctx, []StudentContext{anaContext(), anaContext()}, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, briefs)
	assert.Zero(t, mock.CallCount())
}

func TestCohort(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(map[string]any{
		"overview": "Attendance drives most of the gain.",
		"themes":   []string{"attendance", "study habits"},
	}))
	in := CohortInput{
		Strategy: "DefaultImprovementStrategy",
		Targets:  []Change{{Feature: "studytime", Target: "4"}},
		Summary:  ranking.Summary{Count: 40, MeanGain: 2.1, MaxGain: 6, MeanComplexity: 14},
		Top:      []StudentContext{anaContext()},
	}

	cs, err := NewService(mock, DefaultConfig(), nil).Cohort(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Attendance drives most of the gain.", cs.Overview)
	assert.Len(t, cs.Themes, 2)

	msg := mock.Calls[0].Messages[0].Content
	assert.Contains(t, msg, "studytime = 4")
	assert.Contains(t, msg, "S001: gain +4.5, effort 25, needs studytime, absences")
}

func TestContextsFromRun(t *testing.T) {
	run := &store.Run{Targets: []store.Target{{Feature: "studytime", Value: "4"}, {Feature: "paid", Value: "yes"}}}
	outcomes := []ranking.Outcome{
		{StudentID: "S001", Name: ranking.Name{First: "Ana", Family: "Silva"}, PerformanceGain: 4, Complexity: 3,
			ImpLevels: map[string]float64{"studytime": 2, "paid": 1}},
		{StudentID: "S002", PerformanceGain: 1, Complexity: 9,
			ImpLevels: map[string]float64{"studytime": 0, "paid": 0}},
	}

	source, err := table.New([]string{"S001", "S002"})
	require.NoError(t, err)
	require.NoError(t, source.SetColumn("studytime", []table.Value{table.Num(2), table.Num(4)}))

	got := ContextsFromRun(run, outcomes, source)
	require.Len(t, got, 2)

	assert.Equal(t, "Ana Silva", got[0].Name)
	assert.Equal(t, ranking.QuickWin, got[0].Quadrant)
	assert.Equal(t, []Change{
		{Feature: "studytime", Current: "2", Target: "4", Effort: 2},
		{Feature: "paid", Target: "yes", Effort: 1},
	}, got[0].Changes)

	assert.Equal(t, "S002", got[1].Name)
	assert.Equal(t, ranking.NotWorthIt, got[1].Quadrant)

	noSource := ContextsFromRun(run, outcomes, nil)
	assert.Empty(t, noSource[0].Changes[0].Current)
}

func TestOutcomeFromStore(t *testing.T) {
	o := OutcomeFromStore(store.RunOutcome{StudentID: "S9", FirstName: "Rui", FamilyName: "Costa", PerformanceGain: 2})
	assert.Equal(t, "Rui Costa", o.Name.String())
	assert.Equal(t, 2.0, o.Value(ranking.MetricGain))
}
