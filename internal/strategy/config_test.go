package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/counsel/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDefaultConfig(t *testing.T) {
	require.NoError(t, CheckDefaultConfig())
	assert.Equal(t, DefaultConfig().Targets(), ConfigFromCatalog().Targets())
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"studytime", "absences", "Dalc", "Walc", "freetime", "schoolsup", "famsup", "paid"}, cfg.Keys())
	v, ok := cfg.Get("freetime")
	require.True(t, ok)
	assert.True(t, v.Equal(table.Num(5)))
	v, ok = cfg.Get("paid")
	require.True(t, ok)
	assert.Equal(t, "yes", v.String())
}

func TestConfig_With(t *testing.T) {
	base := DefaultConfig()
	changed := base.With("studytime", table.Num(3))

	v, _ := changed.Get("studytime")
	assert.True(t, v.Equal(table.Num(3)))
	v, _ = base.Get("studytime")
	assert.True(t, v.Equal(table.Num(4)), "With must not modify the receiver")
	assert.Equal(t, base.Keys(), changed.Keys())

	added := base.With("guardian", table.Str("mother"))
	assert.Equal(t, "guardian", added.Keys()[added.Len()-1])
}

func TestNewConfig_Duplicates(t *testing.T) {
	_, err := NewConfig(Target{"Dalc", table.Num(1)}, Target{"Dalc", table.Num(2)})
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Dalc", ce.Feature)
}

func TestParseConfig_KeepsFileOrder(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
paid: "yes"
Walc: 2
studytime: 3
famsup: yes
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"paid", "Walc", "studytime", "famsup"}, cfg.Keys())

	v, _ := cfg.Get("Walc")
	assert.True(t, v.IsNum())
	v, _ = cfg.Get("famsup")
	assert.Equal(t, "yes", v.String())
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not a mapping", "- studytime\n- absences\n"},
		{"malformed", "studytime: [1,\n"},
		{"nested target", "studytime:\n  min: 1\n"},
		{"duplicate key", "Dalc: 1\nDalc: 2\n"},
		{"unknown feature", "shoe_size: 4\n"},
		{"out of range", "absences: 50\n"},
		{"quoted number", "studytime: \"4\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			var ce *ConfigurationError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekend.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Walc: 1\nDalc: 1\n"), 0o644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Walc", "Dalc"}, cfg.Keys())

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
