package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/crux-labs/pricewatch/internal/model"
)

// pgxQuerier is the subset of pgxpool.Pool the store needs; pgxmock
// satisfies it in tests.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    pgxQuerier
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters. Nil or
// zero-valued fields fall back to defaults.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

const pgListGyms = `
SELECT gym_id::text, name, price_amount, price_source_url, website_url,
       COALESCE(place_id, ''), COALESCE(address, ''), COALESCE(city, '')
FROM gym`

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// newPostgresWithQuerier wires an arbitrary querier; used by tests.
func newPostgresWithQuerier(q pgxQuerier, closeFn func()) *PostgresStore {
	return &PostgresStore{pool: q, closeFn: closeFn}
}

const pgMigration = `
CREATE TABLE IF NOT EXISTS gym (
	gym_id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name             TEXT NOT NULL,
	price_amount     NUMERIC,
	price_source_url TEXT,
	website_url      TEXT,
	place_id         TEXT,
	address          TEXT,
	city             TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_gym_place_id ON gym(place_id);
CREATE INDEX IF NOT EXISTS idx_gym_city ON gym(city);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, pgMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) ListGyms(ctx context.Context, filter GymFilter) ([]model.GymRecord, error) {
	query := pgListGyms
	var args []any
	if filter.GymID != "" {
		query += " WHERE gym_id::text = $1"
		args = append(args, filter.GymID)
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list gyms")
	}
	defer rows.Close()

	var gyms []model.GymRecord
	for rows.Next() {
		var g model.GymRecord
		if err := rows.Scan(
			&g.GymID, &g.Name, &g.PriceAmount, &g.PriceSourceURL, &g.WebsiteURL,
			&g.PlaceID, &g.Address, &g.City,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan gym")
		}
		gyms = append(gyms, g)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate gyms")
	}
	return gyms, nil
}
