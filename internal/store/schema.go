package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	tableRuns        = "runs"
	tableRunOutcomes = "run_outcomes"
	tableLLMEvents   = "llm_request_events"
	tableSequences   = "sequences"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		sequence INTEGER NOT NULL UNIQUE,
		created_at INTEGER NOT NULL,
		strategy TEXT NOT NULL,
		model TEXT NOT NULL,
		data_path TEXT NOT NULL DEFAULT '',
		targets TEXT NOT NULL DEFAULT '[]',
		students INTEGER NOT NULL,
		mean_gain REAL NOT NULL,
		mean_complexity REAL NOT NULL,
		max_gain REAL NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at)`,
	`CREATE TABLE IF NOT EXISTS run_outcomes (
		run_id TEXT NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		student_id TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		family_name TEXT NOT NULL DEFAULT '',
		final_grade REAL NOT NULL,
		expected_grade REAL NOT NULL,
		performance_gain REAL NOT NULL,
		complexity REAL NOT NULL,
		imp_levels TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (run_id, student_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sequences (
		name TEXT PRIMARY KEY,
		next_val INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

// migrate creates missing tables. Schema changes are additive only.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
