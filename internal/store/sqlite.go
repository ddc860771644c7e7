package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/crux-labs/pricewatch/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS gym (
	gym_id           TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	price_amount     REAL,
	price_source_url TEXT,
	website_url      TEXT,
	place_id         TEXT,
	address          TEXT,
	city             TEXT,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_gym_place_id ON gym(place_id);
CREATE INDEX IF NOT EXISTS idx_gym_city ON gym(city);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteListGyms = `
SELECT gym_id, name, price_amount, price_source_url, website_url,
       COALESCE(place_id, ''), COALESCE(address, ''), COALESCE(city, '')
FROM gym`

func (s *SQLiteStore) ListGyms(ctx context.Context, filter GymFilter) ([]model.GymRecord, error) {
	query := sqliteListGyms
	var args []any
	if filter.GymID != "" {
		query += " WHERE gym_id = ?"
		args = append(args, filter.GymID)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list gyms")
	}
	defer rows.Close()

	var gyms []model.GymRecord
	for rows.Next() {
		var g model.GymRecord
		if err := rows.Scan(
			&g.GymID, &g.Name, &g.PriceAmount, &g.PriceSourceURL, &g.WebsiteURL,
			&g.PlaceID, &g.Address, &g.City,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan gym")
		}
		gyms = append(gyms, g)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate gyms")
	}
	return gyms, nil
}
