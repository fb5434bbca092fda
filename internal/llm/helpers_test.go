package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func briefSchema() *Schema {
	return &Schema{
		Name:        "test-brief",
		Description: "A counseling brief",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary": map[string]any{"type": "string"},
				"priority": map[string]any{
					"type": "string",
					"enum": []any{"low", "medium", "high"},
				},
				"actions": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required":             []any{"summary", "actions"},
			"additionalProperties": false,
		},
	}
}

const validBrief = `{"summary":"Study more on weekdays.","priority":"high","actions":["raise studytime"]}`

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// jsonServer answers every request with status and body encoded as JSON.
func jsonServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
