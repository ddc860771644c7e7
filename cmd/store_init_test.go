package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crux-labs/pricewatch/internal/config"
)

func TestInitStore_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")

	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: dsn,
		},
	}

	st, err := initStore(context.Background(), "production")
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck
}

func TestInitStore_TestEnvSelectsTestDatabase(t *testing.T) {
	tmpDir := t.TempDir()

	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:          "sqlite",
			DatabaseURL:     filepath.Join(tmpDir, "prod.db"),
			TestDatabaseURL: filepath.Join(tmpDir, "test.db"),
		},
	}

	st, err := initStore(context.Background(), "test")
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	require.NoError(t, st.Migrate(context.Background()))
	assert.FileExists(t, filepath.Join(tmpDir, "test.db"))
}

func TestInitStore_PostgresBadDSN(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:       "postgres",
			DatabaseURL:  "://not-a-dsn",
			PoolMaxConns: 4,
			PoolMinConns: 1,
		},
	}

	// Fails at DSN parsing, before any connection attempt.
	_, err := initStore(context.Background(), "production")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "mysql"},
	}

	_, err := initStore(context.Background(), "production")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}
