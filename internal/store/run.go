package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var runColumns = []string{
	"id", "sequence", "created_at", "strategy", "model", "data_path", "targets",
	"students", "mean_gain", "mean_complexity", "max_gain",
}

var outcomeColumns = []string{
	"student_id", "first_name", "family_name", "final_grade",
	"expected_grade", "performance_gain", "complexity", "imp_levels",
}

// outcomeBatch keeps multi-row inserts under SQLite's bound parameter limit.
const outcomeBatch = 500

// runRepo implements RunRepo with ent's SQL builders over database/sql.
type runRepo struct {
	db  *sql.DB
	seq *sequences
}

func builder() *entsql.DialectBuilder { return entsql.Dialect(dialect.SQLite) }

func (r *runRepo) SaveRun(ctx context.Context, run Run, outcomes []RunOutcome) (err error) {
	if run.ID == "" {
		return errors.New("save run: empty id")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	targets, err := json.Marshal(run.Targets)
	if err != nil {
		return fmt.Errorf("encode targets: %w", err)
	}

	seq, err := r.seq.Next(ctx, seqRuns)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query, args := builder().Insert(tableRuns).
		Columns(runColumns...).
		Values(run.ID, seq, run.CreatedAt.UnixMilli(), run.Strategy, run.Model, run.DataPath,
			string(targets), run.Students, run.MeanGain, run.MeanComplexity, run.MaxGain).
		Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	for start := 0; start < len(outcomes); start += outcomeBatch {
		end := min(start+outcomeBatch, len(outcomes))
		ins := builder().Insert(tableRunOutcomes).
			Columns(append([]string{"run_id", "position"}, outcomeColumns...)...)
		for i, o := range outcomes[start:end] {
			levels, merr := json.Marshal(o.ImpLevels)
			if merr != nil {
				return fmt.Errorf("encode implevels for %s: %w", o.StudentID, merr)
			}
			ins.Values(run.ID, start+i, o.StudentID, o.FirstName, o.FamilyName, o.FinalGrade,
				o.ExpectedGrade, o.PerformanceGain, o.Complexity, string(levels))
		}
		query, args = ins.Query()
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save run outcomes: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

func (r *runRepo) ListRuns(ctx context.Context, opts QueryOpts) ([]Run, error) {
	sel := builder().Select(runColumns...).
		From(entsql.Table(tableRuns)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("sequence"))
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("created_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("created_at", opts.To.UnixMilli()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (r *runRepo) GetRun(ctx context.Context, id string) (*Run, error) {
	query, args := builder().Select(runColumns...).
		From(entsql.Table(tableRuns)).
		Where(entsql.EQ("id", id)).
		Query()
	run, err := scanRun(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *runRepo) RunOutcomes(ctx context.Context, runID string) ([]RunOutcome, error) {
	query, args := builder().Select(outcomeColumns...).
		From(entsql.Table(tableRunOutcomes)).
		Where(entsql.EQ("run_id", runID)).
		OrderBy(entsql.Asc("position")).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query run outcomes: %w", err)
	}
	defer rows.Close()

	var out []RunOutcome
	for rows.Next() {
		var (
			o      RunOutcome
			levels string
		)
		if err := rows.Scan(&o.StudentID, &o.FirstName, &o.FamilyName, &o.FinalGrade,
			&o.ExpectedGrade, &o.PerformanceGain, &o.Complexity, &levels); err != nil {
			return nil, fmt.Errorf("scan run outcome: %w", err)
		}
		if err := json.Unmarshal([]byte(levels), &o.ImpLevels); err != nil {
			return nil, fmt.Errorf("decode implevels for %s: %w", o.StudentID, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *runRepo) DeleteRun(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// Pragmas are per connection, so cascades are not relied on.
	for _, del := range []*entsql.DeleteBuilder{
		builder().Delete(tableRunOutcomes).Where(entsql.EQ("run_id", id)),
		builder().Delete(tableRuns).Where(entsql.EQ("id", id)),
	} {
		query, args := del.Query()
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run     Run
		created int64
		targets string
	)
	err := row.Scan(&run.ID, &run.Sequence, &created, &run.Strategy, &run.Model, &run.DataPath, &targets,
		&run.Students, &run.MeanGain, &run.MeanComplexity, &run.MaxGain)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.CreatedAt = time.UnixMilli(created)
	if err := json.Unmarshal([]byte(targets), &run.Targets); err != nil {
		return nil, fmt.Errorf("decode targets of run %s: %w", run.ID, err)
	}
	return &run, nil
}
