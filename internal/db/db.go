// Package db provides PostgreSQL connection, migration, and type helpers.
package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loquihq/loqui/internal/config"
)

// Open creates a pgx connection pool for the given configuration.
func Open(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, DSN(cfg))
}
