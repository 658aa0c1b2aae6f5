// Package indexdb keeps a SQLite catalog of written saves so tools can list
// and locate them without scanning and parsing save files.
package indexdb

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sqlx.DB
}

type SaveRow struct {
	ID         int64     `db:"id"`
	Path       string    `db:"path"`
	CityName   string    `db:"city_name"`
	Tick       uint64    `db:"tick"`
	Day        int       `db:"day"`
	Population int       `db:"population"`
	Treasury   float64   `db:"treasury"`
	Digest     string    `db:"digest"`
	CreatedAt  time.Time `db:"created_at"`
}

func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate index db: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		city_name TEXT NOT NULL,
		tick INTEGER NOT NULL,
		day INTEGER NOT NULL,
		population INTEGER NOT NULL,
		treasury REAL NOT NULL,
		digest TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_saves_city_tick ON saves(city_name, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordSave inserts one row for a save that was just written.
func (db *DB) RecordSave(row SaveRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.NamedExec(`
		INSERT INTO saves (path, city_name, tick, day, population, treasury, digest, created_at)
		VALUES (:path, :city_name, :tick, :day, :population, :treasury, :digest, :created_at)`, row)
	if err != nil {
		slog.Error("record save", "path", row.Path, "err", err)
	}
	return err
}

// ListSaves returns the most recent saves, newest first.
func (db *DB) ListSaves(limit int) ([]SaveRow, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []SaveRow
	err := db.conn.Select(&rows, `
		SELECT id, path, city_name, tick, day, population, treasury, digest, created_at
		FROM saves ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	return rows, err
}

// LatestFor returns the newest save row for a city, if any.
func (db *DB) LatestFor(city string) (*SaveRow, error) {
	var row SaveRow
	err := db.conn.Get(&row, `
		SELECT id, path, city_name, tick, day, population, treasury, digest, created_at
		FROM saves WHERE city_name = ? ORDER BY tick DESC, id DESC LIMIT 1`, city)
	if err != nil {
		return nil, err
	}
	return &row, nil
}
