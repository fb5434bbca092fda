package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestResolveModel(t *testing.T) {
	tests := []struct {
		aliases map[string]string
		in      string
		want    string
	}{
		{geminiModels, "gemini-flash", "gemini-2.5-flash"},
		{geminiModels, "gemini-2.0-flash", "gemini-2.0-flash"},
		{anthropicModels, "claude-sonnet", "claude-sonnet-4-5-20250929"},
		{openaiModels, "gpt-4o-mini", "gpt-4o-mini"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveModel(tt.in, tt.aliases), tt.in)
	}
}

func TestToGeminiSchema(t *testing.T) {
	s := toGeminiSchema(briefSchema().Definition)

	assert.Equal(t, genai.TypeObject, s.Type)
	require.Len(t, s.Properties, 3)
	assert.Equal(t, genai.TypeString, s.Properties["summary"].Type)
	assert.Equal(t, []string{"low", "medium", "high"}, s.Properties["priority"].Enum)
	assert.Equal(t, genai.TypeArray, s.Properties["actions"].Type)
	require.NotNil(t, s.Properties["actions"].Items)
	assert.Equal(t, genai.TypeString, s.Properties["actions"].Items.Type)
	assert.ElementsMatch(t, []string{"summary", "actions"}, s.Required)
}

func TestToGeminiSchema_GoLiterals(t *testing.T) {
	s := toGeminiSchema(map[string]any{
		"type":     "object",
		"required": []string{"feature"},
		"properties": map[string]any{
			"feature": map[string]any{"type": "string", "enum": []string{"studytime", "absences"}},
			"weight":  map[string]any{"type": "number"},
		},
	})
	assert.Equal(t, []string{"feature"}, s.Required)
	assert.Equal(t, []string{"studytime", "absences"}, s.Properties["feature"].Enum)
	assert.Equal(t, genai.TypeNumber, s.Properties["weight"].Type)
}

func TestGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(t.Context(), GeminiConfig{Model: "gemini-flash"})
	assert.Error(t, err)
}
