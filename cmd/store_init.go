package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/crux-labs/pricewatch/internal/store"
)

// initStore opens the record store for the given environment tag. The
// "test" environment selects the test database when one is configured.
func initStore(ctx context.Context, env string) (store.Store, error) {
	dsn := cfg.Store.DSNFor(env)

	switch cfg.Store.Driver {
	case "sqlite":
		if dsn == "" {
			dsn = "pricewatch.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, dsn, &store.PoolConfig{
			MaxConns: cfg.Store.PoolMaxConns,
			MinConns: cfg.Store.PoolMinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
