package cache

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLite implements Store using modernc.org/sqlite.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS layers (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(migration)
	return eris.Wrap(err, "cache: migrate")
}

func (s *SQLite) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM layers WHERE key = ?`, key.String(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "cache: get %s", key.String())
	}
	return value, true, nil
}

// Put writes the entry, replacing any existing value. Writes are idempotent
// full-row replacements, so concurrent first-time population of the same key
// is duplicate work rather than corruption.
func (s *SQLite) Put(ctx context.Context, key Key, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO layers (key, value, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key.String(), value,
	)
	if err != nil {
		return eris.Wrapf(err, "cache: put %s", key.String())
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
