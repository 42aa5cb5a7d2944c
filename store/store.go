// Package store keeps captured readings in a SQLite database so several
// sessions can be queried together.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/xid"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS readings (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT    NOT NULL,
		ts      INTEGER NOT NULL,
		value   INTEGER NOT NULL,
		raw     TEXT    NOT NULL,
		error   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS readings_session ON readings(session)`,
}

// Reading is one stored frame.
type Reading struct {
	Session   xid.ID
	Timestamp time.Time
	Value     uint16
	Raw       string
	// Err is the decode error text, empty for good frames.
	Err string
}

// Store is a SQLite-backed reading store.
type Store struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	insert, err := db.PrepareContext(ctx,
		`INSERT INTO readings (session, ts, value, raw, error) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return &Store{db: db, insert: insert}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	_ = s.insert.Close()
	return s.db.Close()
}

// Add stores one reading.
func (s *Store) Add(ctx context.Context, r Reading) error {
	var errText sql.NullString
	if r.Err != "" {
		errText = sql.NullString{String: r.Err, Valid: true}
	}
	_, err := s.insert.ExecContext(ctx, r.Session.String(), r.Timestamp.UnixNano(), int64(r.Value), r.Raw, errText)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// Values returns the decoded values of a session in arrival order, skipping
// frames that failed to decode.
func (s *Store) Values(ctx context.Context, session xid.ID) ([]uint16, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM readings WHERE session = ? AND error IS NULL ORDER BY id`, session.String())
	if err != nil {
		return nil, fmt.Errorf("query values: %w", err)
	}
	defer rows.Close()

	var out []uint16
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, uint16(v))
	}
	return out, rows.Err()
}

// SessionSummary describes one stored session.
type SessionSummary struct {
	Session xid.ID
	// Frames counts decoded readings; Errors counts frames that failed to decode.
	Frames int
	Errors int
	First  time.Time
	Last   time.Time
}

// Sessions lists every session in the store, oldest first.
func (s *Store) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session, COUNT(*) - COUNT(error), COUNT(error), MIN(ts), MAX(ts)
		FROM readings GROUP BY session ORDER BY MIN(ts)`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			id          string
			sum         SessionSummary
			first, last int64
		)
		if err := rows.Scan(&id, &sum.Frames, &sum.Errors, &first, &last); err != nil {
			return nil, err
		}
		if sum.Session, err = xid.FromString(id); err != nil {
			return nil, fmt.Errorf("session id %q: %w", id, err)
		}
		sum.First = time.Unix(0, first)
		sum.Last = time.Unix(0, last)
		out = append(out, sum)
	}
	return out, rows.Err()
}
