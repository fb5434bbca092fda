package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/counsel/internal/grader"
	"github.com/abhisek/counsel/internal/ranking"
	"github.com/abhisek/counsel/internal/strategy"
	"github.com/abhisek/counsel/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "students.csv"))
	require.NoError(t, err)

	assert.Equal(t, []string{"S001", "S002", "S003", "S004"}, ds.X.Index())
	assert.Equal(t, FeatureColumns, ds.X.Columns())
	assert.Len(t, FeatureColumns, 30)
	assert.False(t, ds.X.Has("FinalGrade"))

	v, err := ds.X.At(0, "absences")
	require.NoError(t, err)
	assert.True(t, v.IsNum())
	assert.Equal(t, "12", v.String())

	v, err = ds.X.At(0, "famsup")
	require.NoError(t, err)
	assert.Equal(t, "no", v.String())

	grade, ok := ds.Y.Get("S004")
	require.True(t, ok)
	assert.Equal(t, 12.0, grade)
	assert.Equal(t, "Ana Silva", ds.Names["S001"].String())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.csv"))
	assert.Error(t, err)

	dir := t.TempDir()
	dup := filepath.Join(dir, "dup.csv")
	raw, err := os.ReadFile(filepath.Join("testdata", "students.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dup, []byte(strings.ReplaceAll(string(raw), "S002,", "S001,")), 0o644))
	_, err = Load(dup)
	assert.ErrorContains(t, err, "duplicate")

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("StudentID,FinalGrade\n"), 0o644))
	_, err = Load(empty)
	assert.Error(t, err)
}

// rewriteSample copies the sample file through edit and returns the new path.
func rewriteSample(t *testing.T, edit func(header []string, rows [][]string) ([]string, [][]string)) string {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "students.csv"))
	require.NoError(t, err)
	defer f.Close()
	all, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	header, rows := edit(all[0], all[1:])
	path := filepath.Join(t.TempDir(), "students.csv")
	out, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(out)
	require.NoError(t, w.WriteAll(append([][]string{header}, rows...)))
	require.NoError(t, out.Close())
	return path
}

func dropColumns(names ...string) func([]string, [][]string) ([]string, [][]string) {
	return func(header []string, rows [][]string) ([]string, [][]string) {
		drop := map[string]bool{}
		for _, n := range names {
			drop[n] = true
		}
		keep := func(rec []string) []string {
			var out []string
			for j, v := range rec {
				if !drop[header[j]] {
					out = append(out, v)
				}
			}
			return out
		}
		for i := range rows {
			rows[i] = keep(rows[i])
		}
		return keep(header), rows
	}
}

func blankCell(row int, column string) func([]string, [][]string) ([]string, [][]string) {
	return func(header []string, rows [][]string) ([]string, [][]string) {
		for j, h := range header {
			if h == column {
				rows[row][j] = ""
			}
		}
		return header, rows
	}
}

func TestLoad_MissingColumns(t *testing.T) {
	path := rewriteSample(t, dropColumns("studytime", "FinalGrade"))

	ds, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, ds)

	var missing *table.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"studytime", "FinalGrade"}, missing.Columns)
}

func TestLoad_BlankNumericCell(t *testing.T) {
	tests := []struct {
		name   string
		row    int
		column string
	}{
		{"feature", 0, "absences"},
		{"final grade", 2, "FinalGrade"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(rewriteSample(t, blankCell(tt.row, tt.column)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBlankCell))

			var cell *CellError
			require.ErrorAs(t, err, &cell)
			assert.Equal(t, tt.row+1, cell.Row)
			assert.Equal(t, tt.column, cell.Column)
		})
	}
}

func TestLoad_NonNumericCell(t *testing.T) {
	path := rewriteSample(t, func(header []string, rows [][]string) ([]string, [][]string) {
		for j, h := range header {
			if h == "studytime" {
				rows[1][j] = "lots"
			}
		}
		return header, rows
	})

	_, err := Load(path)
	var cell *CellError
	require.ErrorAs(t, err, &cell)
	assert.Equal(t, "studytime", cell.Column)
	assert.Equal(t, "lots", cell.Value)
	assert.False(t, errors.Is(err, ErrBlankCell))
}

func TestLoad_BlankCategoricalCellKept(t *testing.T) {
	ds, err := Load(rewriteSample(t, blankCell(0, "Mjob")))
	require.NoError(t, err)
	v, err := ds.X.At(0, "Mjob")
	require.NoError(t, err)
	assert.Equal(t, "", v.String())
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, []ranking.Outcome{{
		StudentID:       "S001",
		Name:            ranking.Name{First: "Ana", Family: "Silva"},
		FinalGrade:      9,
		ExpectedGrade:   13.5,
		PerformanceGain: 4.5,
		Complexity:      25,
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "StudentID,FirstName,FamilyName,Complexity,FinalGrade,ExpectedGrade,PerformanceGain", lines[0])
	assert.Equal(t, "S001,Ana,Silva,25,9,13.5,4.5", lines[1])
}

func TestExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, ExportFile(path, []ranking.Outcome{{StudentID: "S9"}}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "S9,")
}

func TestDefaultStrategyOnDataset(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "students.csv"))
	require.NoError(t, err)
	model, err := grader.LoadBaseline(filepath.Join("..", "grader", "testdata"), grader.DefaultBaselineOptions())
	require.NoError(t, err)

	s, err := strategy.NewDefault(ds.X, ds.Y, strategy.WithModel(model))
	require.NoError(t, err)
	require.NoError(t, s.Apply(context.Background()))
	target, err := s.Target()
	require.NoError(t, err)

	outcomes, err := ranking.Outcomes(target, ds.Y, ds.Names)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)
	assert.Equal(t, 25.0, outcomes[0].Complexity)
	for _, o := range outcomes {
		assert.InDelta(t, o.ExpectedGrade-o.FinalGrade, o.PerformanceGain, 1e-9)
	}
}
