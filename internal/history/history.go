// Package history is an optional Postgres sink that records one row
// per completed run: final cost breakdown, routable/unroutable group
// counts, and runtime. Off by default — only active when a DSN is configured.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink owns a pooled connection to the run-history database.
type Sink struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against dsn and ensures the run_history table
// exists.
func Connect(ctx context.Context, dsn string) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}

	s := &Sink{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS run_history (
	id            BIGSERIAL PRIMARY KEY,
	started_at    TIMESTAMPTZ NOT NULL,
	duration_s    DOUBLE PRECISION NOT NULL,
	groups        INTEGER NOT NULL,
	unroutable    INTEGER NOT NULL,
	total_cost    DOUBLE PRECISION NOT NULL,
	edge_cost     DOUBLE PRECISION NOT NULL,
	travel_cost   DOUBLE PRECISION NOT NULL,
	delay_cost    DOUBLE PRECISION NOT NULL
)`
	_, err := s.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("history: ensure schema: %w", err)
	}
	return nil
}

// Run is one completed optimization run, ready to insert.
type Run struct {
	StartedAt  time.Time
	Duration   time.Duration
	Groups     int
	Unroutable int
	TotalCost  float64
	EdgeCost   float64
	TravelCost float64
	DelayCost  float64
}

// Record inserts one run-history row.
func (s *Sink) Record(ctx context.Context, r Run) error {
	const insert = `
INSERT INTO run_history
	(started_at, duration_s, groups, unroutable, total_cost, edge_cost, travel_cost, delay_cost)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.pool.Exec(ctx, insert,
		r.StartedAt, r.Duration.Seconds(), r.Groups, r.Unroutable,
		r.TotalCost, r.EdgeCost, r.TravelCost, r.DelayCost)
	if err != nil {
		return fmt.Errorf("history: record run: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Sink) Close() {
	s.pool.Close()
}
