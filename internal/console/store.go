package console

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a SQLite database holding permission grants and the audit log
// of executed command lines.
type Store struct {
	db   *sql.DB
	path string
}

// AuditEntry is one executed command line and its outcome.
type AuditEntry struct {
	ID         int64
	Actor      string
	Line       string
	Outcome    string
	ExecutedAt time.Time
}

var migrations = []struct {
	version     int
	description string
	sql         string
}{
	{1, "grants", `
		CREATE TABLE IF NOT EXISTS grants (
			actor      TEXT NOT NULL,
			permission TEXT NOT NULL,
			PRIMARY KEY (actor, permission)
		)`},
	{2, "audit_log", `
		CREATE TABLE IF NOT EXISTS audit_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			actor       TEXT NOT NULL,
			line        TEXT NOT NULL,
			outcome     TEXT NOT NULL,
			executed_at TEXT NOT NULL
		)`},
}

// NewStore opens the database at path and runs any pending migrations.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err = configureSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	setDBPermissions(path)

	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// NewStoreWithDB creates a Store from an existing database connection.
// Useful for testing with pre-configured databases.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, path: ""}, nil
}

// DB returns the underlying database connection.
// Use sparingly - prefer using Store methods.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func configureSQLite(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// setDBPermissions sets restrictive file permissions on the database and its
// WAL/SHM files.
func setDBPermissions(path string) {
	if path == ":memory:" {
		return
	}
	_ = os.Chmod(path, 0600)
	_ = os.Chmod(path+"-wal", 0600)
	_ = os.Chmod(path+"-shm", 0600)
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TEXT NOT NULL DEFAULT (datetime('now'))
		)`)
	if err != nil {
		return err
	}

	var current sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&current); err != nil {
		return err
	}

	for _, m := range migrations {
		if current.Valid && int64(m.version) <= current.Int64 {
			continue
		}
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		if _, err := db.Exec(
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			m.version, m.description,
		); err != nil {
			return err
		}
	}
	return nil
}

// Grant records a permission for an actor. Granting twice is a no-op.
func (s *Store) Grant(actor, permission string) error {
	_, err := s.db.Exec(
		`INSERT INTO grants (actor, permission) VALUES (?, ?)
		 ON CONFLICT(actor, permission) DO NOTHING`,
		actor, permission,
	)
	return err
}

// Revoke removes a permission from an actor.
func (s *Store) Revoke(actor, permission string) error {
	_, err := s.db.Exec(
		"DELETE FROM grants WHERE actor = ? AND permission = ?",
		actor, permission,
	)
	return err
}

// Allows reports whether the actor holds the permission, either directly or
// through the "*" wildcard actor.
func (s *Store) Allows(actor, permission string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM grants WHERE actor IN (?, '*') AND permission = ?",
		actor, permission,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Permissions returns the permissions granted directly to an actor, sorted.
func (s *Store) Permissions(actor string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT permission FROM grants WHERE actor = ? ORDER BY permission",
		actor,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Record appends an entry to the audit log.
func (s *Store) Record(actor, line, outcome string) error {
	_, err := s.db.Exec(
		"INSERT INTO audit_log (actor, line, outcome, executed_at) VALUES (?, ?, ?, ?)",
		actor, line, outcome, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Recent returns the most recent audit entries, newest first.
func (s *Store) Recent(limit int) ([]AuditEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, actor, line, outcome, executed_at
		 FROM audit_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var (
			e  AuditEntry
			ts string
		)
		if err := rows.Scan(&e.ID, &e.Actor, &e.Line, &e.Outcome, &ts); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, err
		}
		e.ExecutedAt = t
		out = append(out, e)
	}
	return out, rows.Err()
}

// PurgeBefore deletes audit entries older than the cutoff and reports how
// many rows were removed.
func (s *Store) PurgeBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(
		"DELETE FROM audit_log WHERE executed_at < ?",
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
