package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// timeLayout is fixed-width so that text comparison in SQL matches time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the database/sql implementation of Store. The same code serves the
// SQLite and PostgreSQL backends; dialect differences are confined to the
// dialect value.
type DB struct {
	db      *sql.DB
	q       querier
	dialect dialect
	inTx    bool
}

// compile-time check that DB implements Store.
var _ Store = (*DB)(nil)

// Open opens (or creates) the SQLite database at the given path.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set PRAGMAs explicitly (modernc driver doesn't support DSN query params)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	// PRAGMAs are per connection; a single connection keeps foreign_keys on
	// for every statement.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{db: sqlDB, q: sqlDB, dialect: sqliteDialect}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

func (d *DB) Close() error {
	if d.inTx {
		return nil
	}
	return d.db.Close()
}

// WithTx runs fn inside a single transaction. The Store passed to fn must be
// used for every call that belongs to the unit of work. Nested calls reuse the
// outer transaction.
func (d *DB) WithTx(ctx context.Context, fn func(Store) error) error {
	if d.inTx {
		return fn(d)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&DB{db: d.db, q: tx, dialect: d.dialect, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// NewID returns a new ULID string. ULIDs sort in creation order.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// dialect captures the differences between the SQL backends.
type dialect struct {
	name         string
	positional   bool   // $1, $2 placeholders instead of ?
	likeOperator string // case-insensitive substring operator
	migrations   []migration
}

var sqliteDialect = dialect{
	name:         "sqlite",
	likeOperator: "LIKE",
	migrations:   migrations,
}

// rebind rewrites ? placeholders for dialects that use positional ones.
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.q.ExecContext(ctx, d.dialect.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.q.QueryContext(ctx, d.dialect.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.q.QueryRowContext(ctx, d.dialect.rebind(query), args...)
}

// placeholders returns "?, ?, ?" with n entries.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

type migration struct {
	version int
	sqls    []string
}

var migrations = []migration{
	{1, []string{
		`CREATE TABLE IF NOT EXISTS training_pages (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			comment TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_training_pages_user_created ON training_pages(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS user_tags (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_tags_unique ON user_tags(user_id, name, category)`,
		`CREATE TABLE IF NOT EXISTS training_page_tags (
			id TEXT PRIMARY KEY,
			training_page_id TEXT NOT NULL,
			user_tag_id TEXT NOT NULL,
			FOREIGN KEY (training_page_id) REFERENCES training_pages(id) ON DELETE CASCADE,
			FOREIGN KEY (user_tag_id) REFERENCES user_tags(id) ON DELETE CASCADE
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_training_page_tags_unique ON training_page_tags(training_page_id, user_tag_id)`,
		`CREATE INDEX IF NOT EXISTS idx_training_page_tags_tag ON training_page_tags(user_tag_id)`,
	}},
}

func (d *DB) getSchemaVersion() int {
	var version int
	err := d.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

func (d *DB) migrate() error {
	// Ensure schema_version table exists first
	_, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion := d.getSchemaVersion()

	for _, m := range d.dialect.migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := d.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
		}

		for _, s := range m.sqls {
			if _, err := tx.Exec(s); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
		}

		_, err = tx.Exec(d.dialect.rebind("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)"),
			m.version, formatTime(time.Now()))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
