package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"go.klb.dev/clipflow/internal/history"
)

// SQLiteFile is the database file name under the data directory.
const SQLiteFile = "history.db"

// schemaVersion is the latest schema version. Bump it when adding migrations.
const schemaVersion = 2

// SQLite stores history in a clipboard_history table, one row per item.
type SQLite struct {
	db       *sql.DB
	path     string
	maxItems int
}

// OpenSQLite opens (creating if needed) dataDir/history.db.
func OpenSQLite(dataDir string, maxItems int) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, SQLiteFile)

	// Pragmas in the DSN apply to every pooled connection.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	_ = os.Chmod(path, 0o600)

	slog.Debug("sqlite store ready", "path", path)
	return &SQLite{db: db, path: path, maxItems: maxItems}, nil
}

// migrate applies schema migrations based on user_version. Version 1 is the
// table layout older releases wrote; version 2 adds an explicit position.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		const schema = `
		CREATE TABLE IF NOT EXISTS clipboard_history (
		  id         INTEGER PRIMARY KEY AUTOINCREMENT,
		  content    TEXT NOT NULL,
		  created_at TEXT NOT NULL
		);`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
	}
	if version < 2 {
		has, err := hasColumn(db, "clipboard_history", "position")
		if err != nil {
			return err
		}
		if !has {
			if _, err := db.Exec("ALTER TABLE clipboard_history ADD COLUMN position INTEGER"); err != nil {
				return fmt.Errorf("migration 2 failed: %w", err)
			}
		}
	}
	if version < schemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}
	return nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (s *SQLite) Kind() string { return KindSQLite }

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

// Load reads rows by position. Rows written without a position (by older
// releases) follow, newest first.
func (s *SQLite) Load(ctx context.Context) *history.History {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content, created_at FROM clipboard_history
		ORDER BY position IS NULL, position, created_at DESC`)
	if err != nil {
		slog.Error("error loading history from database", "err", err)
		return empty(s.maxItems)
	}
	defer rows.Close()

	var recs []record
	for rows.Next() {
		var r record
		if err := rows.Scan(&r.Content, &r.CreatedAt); err != nil {
			slog.Warn("skipping unreadable history row", "err", err)
			continue
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		slog.Error("error loading history from database", "err", err)
		return empty(s.maxItems)
	}
	return build(KindSQLite, s.maxItems, recs)
}

// Save deletes every row and inserts the snapshot in one transaction.
func (s *SQLite) Save(ctx context.Context, snap history.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM clipboard_history"); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO clipboard_history (content, created_at, position) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range toRecords(snap) {
		if _, err := stmt.ExecContext(ctx, r.Content, r.CreatedAt, i); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.Debug("saved history", "store", KindSQLite, "items", len(snap.Items))
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM clipboard_history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	slog.Info("database history cleared", "path", s.path)
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
