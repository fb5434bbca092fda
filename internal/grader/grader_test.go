package grader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/counsel/internal/features"
	"github.com/abhisek/counsel/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyTable(t *testing.T, famsup ...string) *table.Table {
	t.Helper()
	ids := make([]string, len(famsup))
	study := make([]float64, len(famsup))
	vals := make([]table.Value, len(famsup))
	for i, f := range famsup {
		ids[i] = string(rune('a' + i))
		study[i] = float64(i + 1)
		vals[i] = table.Str(f)
	}
	tbl, err := table.New(ids)
	require.NoError(t, err)
	require.NoError(t, tbl.SetFloats("studytime", study))
	require.NoError(t, tbl.SetColumn("famsup", vals))
	return tbl
}

func tinyModel(t *testing.T) *BaselineModel {
	t.Helper()
	m, err := LoadBaseline("testdata", BaselineOptions{ModelName: "tiny-model", EncoderName: "tiny-encoder"})
	require.NoError(t, err)
	return m
}

func TestOneHotEncoder_Transform(t *testing.T) {
	enc, err := NewOneHotEncoder([]string{"famsup"}, map[string][]string{"famsup": {"no", "yes"}}, UnknownError)
	require.NoError(t, err)
	assert.Equal(t, []string{"famsup_no", "famsup_yes"}, enc.FeatureNamesOut())

	in := tinyTable(t, "yes", "no")
	out, err := enc.Transform(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"studytime", "famsup_no", "famsup_yes"}, out.Columns())
	yes, err := out.Floats("famsup_yes")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, yes)

	// Input is untouched.
	assert.Equal(t, []string{"studytime", "famsup"}, in.Columns())
}

func TestOneHotEncoder_UnknownCategory(t *testing.T) {
	enc, err := NewOneHotEncoder([]string{"famsup"}, map[string][]string{"famsup": {"no", "yes"}}, UnknownError)
	require.NoError(t, err)
	in := tinyTable(t, "yes", "sometimes")

	_, err = enc.Transform(in)
	var uc *UnknownCategoryError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "famsup", uc.Column)
	assert.Equal(t, "sometimes", uc.Value)
	assert.Equal(t, "b", uc.Row)

	out, err := enc.WithUnknown(UnknownIgnore).Transform(in)
	require.NoError(t, err)
	no, _ := out.Floats("famsup_no")
	yes, _ := out.Floats("famsup_yes")
	assert.Equal(t, []float64{0, 0}, no)
	assert.Equal(t, []float64{1, 0}, yes)
}

func TestOneHotEncoder_MissingColumn(t *testing.T) {
	enc, err := NewOneHotEncoder([]string{"famsup", "paid"}, map[string][]string{
		"famsup": {"no", "yes"},
		"paid":   {"no", "yes"},
	}, UnknownError)
	require.NoError(t, err)

	_, err = enc.Transform(tinyTable(t, "yes"))
	var mi *ModelInputError
	require.ErrorAs(t, err, &mi)
	assert.Equal(t, []string{"paid"}, mi.Missing)
}

func TestParseUnknownPolicy(t *testing.T) {
	p, err := ParseUnknownPolicy("")
	require.NoError(t, err)
	assert.Equal(t, UnknownError, p)

	p, err = ParseUnknownPolicy("ignore")
	require.NoError(t, err)
	assert.Equal(t, UnknownIgnore, p)

	_, err = ParseUnknownPolicy("zero")
	assert.Error(t, err)
}

func TestLinearRegressor_Predict(t *testing.T) {
	r, err := NewLinearRegressor([]string{"a", "b"}, []float64{2, -1}, 0.5)
	require.NoError(t, err)

	tbl, err := table.New([]string{"s1", "s2", "s3"})
	require.NoError(t, err)
	require.NoError(t, tbl.SetFloats("b", []float64{1, 0, 4}))
	require.NoError(t, tbl.SetFloats("a", []float64{1, 3, 2}))
	require.NoError(t, tbl.SetFloats("unused", []float64{9, 9, 9}))

	got, err := r.Predict(tbl)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.5, 6.5, 0.5}, got, 1e-12)
}

func TestLinearRegressor_Errors(t *testing.T) {
	_, err := NewLinearRegressor([]string{"a"}, []float64{1, 2}, 0)
	assert.Error(t, err)
	_, err = NewLinearRegressor([]string{"a", "a"}, []float64{1, 2}, 0)
	assert.Error(t, err)

	r, err := NewLinearRegressor([]string{"a"}, []float64{1}, 0)
	require.NoError(t, err)
	tbl, err := table.New([]string{"s1"})
	require.NoError(t, err)
	require.NoError(t, tbl.SetColumn("a", []table.Value{table.Str("x")}))

	_, err = r.Predict(tbl)
	var mi *ModelInputError
	require.ErrorAs(t, err, &mi)
}

func TestBaselineModel_PredictDoesNotMutate(t *testing.T) {
	m := tinyModel(t)
	in := tinyTable(t, "yes", "no", "yes")
	before := in.Clone()

	got, err := m.Predict(context.Background(), in)
	require.NoError(t, err)
	// 10 + 1.5*studytime + 2*famsup_yes
	assert.InDeltaSlice(t, []float64{13.5, 13, 16.5}, got, 1e-12)

	assert.Equal(t, before.Columns(), in.Columns())
	v, err := in.At(0, "famsup")
	require.NoError(t, err)
	assert.Equal(t, "yes", v.String())
}

func TestBaselineModel_LengthAndOrder(t *testing.T) {
	m := tinyModel(t)
	in := tinyTable(t, "no", "no", "no", "no", "no")
	got, err := m.Predict(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, got, in.Len())
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1], "row order must follow studytime order")
	}
}

func TestBaselineModel_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tinyModel(t).Predict(ctx, tinyTable(t, "no"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadBaseline_ShippedArtifacts(t *testing.T) {
	m, err := LoadBaseline("testdata", DefaultBaselineOptions())
	require.NoError(t, err)
	assert.Equal(t, BaselineName, m.Name())
	assert.Equal(t, features.CategoricalFeatures(), m.Encoder().Columns())
	assert.Equal(t, UnknownError, m.Encoder().Unknown())

	ignore, err := LoadBaseline("testdata", BaselineOptions{Unknown: UnknownIgnore})
	require.NoError(t, err)
	assert.Equal(t, UnknownIgnore, ignore.Encoder().Unknown())
}

func TestLoadArtifact_Failures(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"missing file", "nope.json"},
		{"corrupt json", "corrupt-model.json"},
		{"schema violation", "incomplete-model.json"},
		{"unsupported major version", "future-model.json"},
		{"wrong kind", "tiny-encoder.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegressor(filepath.Join("testdata", tt.file))
			var ae *ArtifactError
			require.ErrorAs(t, err, &ae)
			assert.Contains(t, ae.Path, tt.file)
		})
	}

	_, err := LoadRegressor(filepath.Join("testdata", "nope.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDefaultFactory(t *testing.T) {
	f := DefaultFactory("testdata", BaselineOptions{ModelName: "tiny-model", EncoderName: "tiny-encoder"})
	m, err := f()
	require.NoError(t, err)
	assert.Equal(t, "tiny-model", m.Name())

	_, err = DefaultFactory(t.TempDir(), DefaultBaselineOptions())()
	assert.Error(t, err)
}

func TestFuncModel(t *testing.T) {
	m := FuncModel{Fn: func(_ context.Context, f *table.Table) ([]float64, error) {
		return make([]float64, f.Len()), nil
	}}
	assert.Equal(t, "func", m.Name())
	got, err := m.Predict(context.Background(), tinyTable(t, "no", "yes"))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
