package advisor

import "github.com/abhisek/counsel/internal/llm"

// BriefSchema is the JSON schema for a student brief.
var BriefSchema = &llm.Schema{
	Name:        "student-brief",
	Description: "A counseling brief with concrete actions for one student",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "Two or three sentences on where the student stands and what the plan would achieve",
			},
			"actions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"feature": map[string]any{
							"type":        "string",
							"description": "Feature name exactly as listed in the plan",
						},
						"recommendation": map[string]any{
							"type":        "string",
							"description": "One concrete step the counselor can propose",
						},
					},
					"required":             []any{"feature", "recommendation"},
					"additionalProperties": false,
				},
			},
			"risks": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Things that could keep the plan from working",
			},
		},
		"required":             []any{"summary", "actions", "risks"},
		"additionalProperties": false,
	},
}

// CohortSchema is the JSON schema for a run overview.
var CohortSchema = &llm.Schema{
	Name:        "cohort-summary",
	Description: "An overview of a strategy run across all students",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overview": map[string]any{
				"type":        "string",
				"description": "One short paragraph for a staff meeting",
			},
			"themes": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Recurring needs across the prioritized students",
			},
		},
		"required":             []any{"overview", "themes"},
		"additionalProperties": false,
	},
}
