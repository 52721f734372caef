package server

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPinger probes the vector store's connection pool. It satisfies the
// Pinger interface and is used by GET /api/ready.
type PostgresPinger struct {
	pool *pgxpool.Pool
}

// NewPostgresPinger constructs a PostgresPinger for the given pool.
func NewPostgresPinger(pool *pgxpool.Pool) *PostgresPinger {
	return &PostgresPinger{pool: pool}
}

// Name returns the dependency label used in readiness responses.
func (p *PostgresPinger) Name() string { return "postgres" }

// Ping issues a pool-level health check against Postgres.
func (p *PostgresPinger) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}
