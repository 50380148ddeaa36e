// Package storage provides the SQLite persistence layer for users, API keys,
// boards and check-ins.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/checkerhq/checker/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT,
	password_hash TEXT NOT NULL DEFAULT '',
	timezone      TEXT NOT NULL DEFAULT 'UTC',
	theme         TEXT NOT NULL DEFAULT 'system',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS api_keys (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	key_hash     TEXT NOT NULL,
	key_prefix   TEXT NOT NULL,
	scopes       TEXT NOT NULL DEFAULT '[]',
	expires_at   DATETIME,
	last_used_at DATETIME,
	is_revoked   INTEGER NOT NULL DEFAULT 0,
	revoked_at   DATETIME,
	created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_api_keys_prefix ON api_keys(key_prefix);

CREATE TABLE IF NOT EXISTS boards (
	id                 TEXT PRIMARY KEY,
	user_id            TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name               TEXT NOT NULL,
	description        TEXT,
	emoji              TEXT NOT NULL DEFAULT '📊',
	color              TEXT NOT NULL DEFAULT '#3B82F6',
	unit_type          TEXT NOT NULL,
	unit               TEXT,
	target_amount      REAL,
	current_streak     INTEGER NOT NULL DEFAULT 0,
	longest_streak     INTEGER NOT NULL DEFAULT 0,
	total_check_ins    INTEGER NOT NULL DEFAULT 0,
	is_archived        INTEGER NOT NULL DEFAULT 0,
	archived_at        DATETIME,
	last_check_in_date TEXT,
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL,
	UNIQUE(user_id, name)
);

CREATE INDEX IF NOT EXISTS idx_boards_user ON boards(user_id);

CREATE TABLE IF NOT EXISTS check_ins (
	id             TEXT PRIMARY KEY,
	board_id       TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
	user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	date           TEXT NOT NULL,
	timestamp      DATETIME NOT NULL,
	amount         REAL,
	note           TEXT,
	session_number INTEGER NOT NULL DEFAULT 1,
	created_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_check_ins_board_date ON check_ins(board_id, date);
CREATE INDEX IF NOT EXISTS idx_check_ins_user_date ON check_ins(user_id, date);
`

// DB wraps a sql.DB with Checker-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// Transactions are opened with an immediate write lock (_txlock) so that a
// check-in insert/delete plus the aggregate recompute form one serialized
// unit per database; busy_timeout bounds lock waits.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks database connectivity, for readiness probes.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// InTx runs fn inside a single write transaction. Lock contention surfaces
// as a conflict the caller may retry.
func (db *DB) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return mapBusy(fmt.Errorf("storage: begin tx: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := fn(&sqlTx{ctx: ctx, tx: tx}); err != nil {
		return mapBusy(err)
	}
	if err := tx.Commit(); err != nil {
		return mapBusy(fmt.Errorf("storage: commit: %w", err))
	}
	return nil
}

// mapBusy rewrites SQLite lock contention into the shared conflict sentinel.
func mapBusy(err error) error {
	if err == nil {
		return nil
	}
	if isBusy(err) {
		return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
	}
	return err
}

func isBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
