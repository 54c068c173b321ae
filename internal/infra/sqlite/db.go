// Package sqlite persists the engine's diagnostics: per-round score
// distributions and backtrack audit records.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the diagnostics database.
type DB struct {
	db *sql.DB
}

// Migrations returns the schema statements. Each string is a single
// SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Per-round scored distributions
		`CREATE TABLE IF NOT EXISTS rounds (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			iter        INTEGER NOT NULL,
			start_frame INTEGER NOT NULL,
			chosen      INTEGER NOT NULL,
			score       REAL NOT NULL,
			expl        TEXT NOT NULL,
			movie_len   INTEGER NOT NULL,
			normalized  REAL NOT NULL,
			immediates  TEXT NOT NULL DEFAULT '[]',
			positives   TEXT NOT NULL DEFAULT '[]',
			negatives   TEXT NOT NULL DEFAULT '[]',
			norms       TEXT NOT NULL DEFAULT '[]',
			created_at  TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_iter ON rounds(iter)`,

		// Backtrack audit records
		`CREATE TABLE IF NOT EXISTS backtracks (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			iter       INTEGER NOT NULL,
			movenum    INTEGER NOT NULL,
			candidates INTEGER NOT NULL,
			improved   INTEGER NOT NULL DEFAULT 0,
			old_len    INTEGER NOT NULL,
			new_len    INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtracks_movenum ON backtracks(movenum)`,
	}
}

// Open opens (creating if needed) the diagnostics database and applies
// the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open diagnostics db: %w", err)
	}
	for _, stmt := range Migrations() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate diagnostics db: %w", err)
		}
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error { return d.db.Close() }

// InsertRound records one round's scored distribution. The vectors
// arrive pre-encoded as JSON arrays.
func (d *DB) InsertRound(iter, startFrame, chosen int, score float64, expl string,
	movieLen int, normalized float64, immediates, positives, negatives, norms string) error {
	_, err := d.db.Exec(`
		INSERT INTO rounds (iter, start_frame, chosen, score, expl, movie_len, normalized,
			immediates, positives, negatives, norms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, iter, startFrame, chosen, score, expl, movieLen, normalized,
		immediates, positives, negatives, norms)
	return err
}

// InsertBacktrack records one backtrack attempt.
func (d *DB) InsertBacktrack(iter, movenum, candidates int, improved bool, oldLen, newLen int) error {
	improvedInt := 0
	if improved {
		improvedInt = 1
	}
	_, err := d.db.Exec(`
		INSERT INTO backtracks (iter, movenum, candidates, improved, old_len, new_len)
		VALUES (?, ?, ?, ?, ?, ?)
	`, iter, movenum, candidates, improvedInt, oldLen, newLen)
	return err
}

// RoundCount returns the number of recorded rounds.
func (d *DB) RoundCount() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM rounds`).Scan(&n)
	return n, err
}

// BacktrackCount returns how many backtracks were recorded, and how
// many of those improved on the original segment.
func (d *DB) BacktrackCount() (total, improved int, err error) {
	err = d.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(improved), 0) FROM backtracks
	`).Scan(&total, &improved)
	return
}
