package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// Sequence names. Each table that needs a stable append order draws from
// its own counter.
const (
	seqRuns      = tableRuns
	seqLLMEvents = tableLLMEvents
)

// sequences hands out increasing per-name sequence numbers so rows keep
// their append order even when timestamps collide. The mutex serializes
// within the process and the RETURNING clause makes each increment atomic
// in the database.
type sequences struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequences(db *sql.DB) *sequences {
	return &sequences{db: db}
}

// Next returns the next number for name, starting at 1.
func (s *sequences) Next(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args := builder().Insert(tableSequences).
		Columns("name", "next_val").
		Values(name, 1).
		OnConflict(entsql.ConflictColumns("name"), entsql.DoNothing()).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("seed sequence %s: %w", name, err)
	}

	// The builders cannot express UPDATE ... RETURNING.
	var seq int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE sequences SET next_val = next_val + 1 WHERE name = ? RETURNING next_val - 1`, name,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return seq, nil
}
