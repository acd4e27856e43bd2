// Package ledger records run history in Postgres so operators can audit
// which creatives a run produced without re-running it. It is optional
// wiring: the pipeline works identically without it.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pipeline/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id          UUID PRIMARY KEY,
	campaign    TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS pipeline_run_items (
	run_id       UUID NOT NULL REFERENCES pipeline_runs (id),
	product_id   TEXT NOT NULL,
	aspect_ratio TEXT NOT NULL,
	status       TEXT NOT NULL,
	provenance   TEXT NOT NULL,
	output_path  TEXT NOT NULL DEFAULT '',
	cause        TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store is a pgx-backed run recorder.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects a pool to databaseURL and ensures the ledger schema exists.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ledger: parse database url: %w", err)
	}
	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("ledger: connect database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ledger: ensure schema: %w", err)
	}
	return nil
}

// RecordRun persists the run row and one row per item.
func (s *Store) RecordRun(ctx context.Context, report pipeline.Report) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO pipeline_runs (id, campaign, started_at, finished_at) VALUES ($1, $2, $3, $4)`,
		report.RunID, report.Campaign, report.StartedAt, report.FinishedAt,
	); err != nil {
		return fmt.Errorf("ledger: insert run: %w", err)
	}

	for _, item := range report.Items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO pipeline_run_items (run_id, product_id, aspect_ratio, status, provenance, output_path, cause)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			report.RunID, item.ProductID, item.Ratio, string(item.Status), string(item.Provenance), item.OutputPath, item.Cause(),
		); err != nil {
			return fmt.Errorf("ledger: insert item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ledger: commit: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

var _ pipeline.Recorder = (*Store)(nil)
