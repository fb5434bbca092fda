package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/counsel/internal/advisor"
	"github.com/abhisek/counsel/internal/config"
	"github.com/abhisek/counsel/internal/llm"
	"github.com/abhisek/counsel/internal/ranking"
	"github.com/abhisek/counsel/internal/strategy"
	"github.com/abhisek/counsel/internal/table"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testData   = filepath.Join("..", "internal", "dataset", "testdata", "students.csv")
	testModels = filepath.Join("..", "internal", "grader", "testdata")
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv(config.PathEnvVar, "")
	t.Setenv("COUNSEL_DB", "")
	os.Unsetenv("COUNSEL_DB")
	return filepath.Join(dir, "counsel.db")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRun_SavesAndLists(t *testing.T) {
	db := isolate(t)

	out, err := execute(t, "run", "--db", db, "--data", testData, "--models", testModels)
	require.NoError(t, err)
	assert.Contains(t, out, "DefaultImprovementStrategy")
	assert.Contains(t, out, "S001")
	assert.Contains(t, out, "saved as run")

	out, err = execute(t, "runs", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "DefaultImprovementStrategy")
	assert.NotContains(t, out, "No runs saved yet")
}

func TestRun_Export(t *testing.T) {
	db := isolate(t)
	export := filepath.Join(t.TempDir(), "out.csv")

	_, err := execute(t, "run", "--db", db, "--data", testData, "--models", testModels,
		"--no-save", "--export", export)
	require.NoError(t, err)

	raw, err := os.ReadFile(export)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "PerformanceGain")
	assert.Contains(t, string(raw), "S001")
}

func TestRunsView_NotFound(t *testing.T) {
	db := isolate(t)
	_, err := execute(t, "runs", "view", "nope", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReset(t *testing.T) {
	db := isolate(t)
	require.NoError(t, os.WriteFile(db, []byte("x"), 0o644))

	out, err := execute(t, "reset", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "--yes")
	assert.FileExists(t, db)

	_, err = execute(t, "reset", "--db", db, "--yes")
	require.NoError(t, err)
	assert.NoFileExists(t, db)
}

func strategyCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cfg := config.Default()
	appCfg = &cfg

	c := &cobra.Command{}
	c.Flags().String("strategy", "", "")
	c.Flags().StringArray("set", nil, "")
	require.NoError(t, c.Flags().Parse(args))
	return c
}

func TestResolveStrategyConfig(t *testing.T) {
	c := strategyCommand(t, "--set", "studytime=3", "--set", " paid =no")
	cfg, err := resolveStrategyConfig(c)
	require.NoError(t, err)

	assert.Equal(t, strategy.DefaultConfig().Keys(), cfg.Keys())
	v, _ := cfg.Get("studytime")
	assert.True(t, v.Equal(table.Num(3)))
	v, _ = cfg.Get("paid")
	assert.True(t, v.Equal(table.Str("no")))
}

func TestResolveStrategyConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		set  string
	}{
		{"no separator", "studytime"},
		{"empty feature", "=3"},
		{"out of range", "studytime=9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveStrategyConfig(strategyCommand(t, "--set", tt.set))
			assert.Error(t, err)
		})
	}
}

func TestResolveStrategyConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("absences: 2\nstudytime: 3\n"), 0o644))

	cfg, err := resolveStrategyConfig(strategyCommand(t, "--strategy", path))
	require.NoError(t, err)
	assert.Equal(t, []string{"absences", "studytime"}, cfg.Keys())
}

func TestChanges(t *testing.T) {
	o := ranking.Outcome{ImpLevels: map[string]float64{"studytime": 2, "paid": 0, "absences": 4}}
	assert.Equal(t, "studytime:2 absences:4", changes(o, []string{"studytime", "paid", "absences"}))
}

func TestTimeoutBudget(t *testing.T) {
	assert.Equal(t, time.Duration(5), timeoutBudget(5, false))
	assert.Equal(t, time.Duration(6), timeoutBudget(5, true))
	assert.Equal(t, time.Duration(1), timeoutBudget(0, false))
}

func TestUnwrapJoined(t *testing.T) {
	a, b := errors.New("a"), errors.New("b")
	assert.Equal(t, []error{a, b}, unwrapJoined(errors.Join(a, b)))
	assert.Equal(t, []error{a}, unwrapJoined(a))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0042", formatCost(0.0042))
	assert.Equal(t, "$1.25", formatCost(1.25))

	c, ok := llm.EstimateCost("unknown-model", 10, 10)
	assert.False(t, ok)
	assert.Zero(t, c)
}

func TestReportBriefErrors(t *testing.T) {
	failed := &advisor.BriefError{StudentID: "S002", Err: errors.New("provider down")}

	tests := []struct {
		name    string
		err     error
		drafted int
		wantErr error
		wantOut []string
	}{
		{"none", nil, 3, nil, nil},
		{"student failure only", errors.Join(failed), 2, nil, []string{"S002: provider down"}},
		{"nothing drafted", errors.Join(failed), 0, failed, []string{"S002"}},
		{
			"deadline mid run",
			errors.Join(failed, context.DeadlineExceeded),
			1,
			context.DeadlineExceeded,
			[]string{"S002: provider down", "stopped: context deadline exceeded"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := reportBriefErrors(&printer{w: &buf}, tt.err, tt.drafted)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
