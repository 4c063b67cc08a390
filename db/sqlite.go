package db

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

// UniqueConstrain is the SQLite extended error code of a primary-key
// violation, used to detect idempotent re-inserts (e.g. a gap recorded twice
// for the same tx).
const UniqueConstrain = 1555

var ErrNotFound = errors.New("not found")

// NewSQLiteDB opens the projection database at dbPath, creating the file if
// needed. WAL keeps the list/track read paths unblocked while custody writes
// land; busy_timeout covers the short write bursts of a reconciler run.
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;
	`)
	return db, err
}

// ReturnErrNotFound maps sql.ErrNoRows onto ErrNotFound so callers never
// depend on database/sql sentinels.
func ReturnErrNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
