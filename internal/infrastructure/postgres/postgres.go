package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elecmate/materials-compare/internal/domain"
)

const defaultMaxConns = 10

// Connect opens a connection pool and verifies connectivity
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: catalog dsn is required for the postgres provider", domain.ErrCollaboratorMisconfigured)
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing dsn: %v", domain.ErrCollaboratorMisconfigured, err)
	}

	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	config.MaxConns = maxConns
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the catalog tables and search index when missing
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS suppliers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			supplier_id TEXT NOT NULL REFERENCES suppliers(id),
			name TEXT NOT NULL,
			brand TEXT NULL,
			sku TEXT NULL,
			price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			regular_price NUMERIC(12,2) NULL,
			is_on_sale BOOLEAN NOT NULL DEFAULT FALSE,
			discount_percentage DOUBLE PRECISION NULL,
			stock_status TEXT NOT NULL DEFAULT 'unknown',
			url TEXT NOT NULL DEFAULT '',
			image_url TEXT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			search_vector tsvector GENERATED ALWAYS AS (
				to_tsvector('english', coalesce(name, '') || ' ' || coalesce(brand, '') || ' ' || coalesce(sku, ''))
			) STORED
		)
		`,
		`CREATE INDEX IF NOT EXISTS products_search_idx ON products USING GIN (search_vector)`,
		`CREATE INDEX IF NOT EXISTS products_price_idx ON products (price)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	return nil
}
