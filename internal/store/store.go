package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"iter"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on events.kind
const currentSchemaVersion = 1

// Store is the SQLite Backend. Every named map is a namespace of the single
// entries table; the same database also holds the event log.
type Store struct {
	db *sqlx.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying handle for direct queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Map returns the named map. Maps are created lazily on first write.
func (s *Store) Map(name string) Map {
	return &sqliteMap{db: s.db, namespace: name}
}

func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sqlx.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sqlx.DB) error {
	var version int
	if err := db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 adds the kind index used by filtered event reads.
func migrateToV1(db *sqlx.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind, seq)`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.Get(&value, fmt.Sprintf("PRAGMA %s", name)); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

type sqliteMap struct {
	db        *sqlx.DB
	namespace string
}

type entryRow struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

func (m *sqliteMap) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := m.db.GetContext(ctx, &value,
		`SELECT value FROM entries WHERE namespace = ? AND key = ?`, m.namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", m.namespace, key, err)
	}
	return value, true, nil
}

func (m *sqliteMap) Insert(ctx context.Context, key string, value []byte) ([]byte, bool, error) {
	var prev []byte
	var existed bool
	err := m.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		prev, existed, err = m.previous(ctx, tx, key)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO entries (namespace, key, value) VALUES (?, ?, ?)
			ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value
		`, m.namespace, key, value)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("insert %s/%s: %w", m.namespace, key, err)
	}
	return prev, existed, nil
}

func (m *sqliteMap) Remove(ctx context.Context, key string) ([]byte, bool, error) {
	var prev []byte
	var existed bool
	err := m.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		prev, existed, err = m.previous(ctx, tx, key)
		if err != nil || !existed {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM entries WHERE namespace = ? AND key = ?`, m.namespace, key)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("remove %s/%s: %w", m.namespace, key, err)
	}
	return prev, existed, nil
}

// Entries reads every row before returning. The pool holds one connection,
// so writes issued while ranging would otherwise block on the open cursor.
func (m *sqliteMap) Entries(ctx context.Context) (iter.Seq2[string, []byte], error) {
	var rows []entryRow
	err := m.db.SelectContext(ctx, &rows, `
		SELECT key, value FROM entries
		WHERE namespace = ?
		ORDER BY key COLLATE BINARY ASC
	`, m.namespace)
	if err != nil {
		return nil, fmt.Errorf("entries %s: %w", m.namespace, err)
	}

	keys := make([]string, len(rows))
	values := make([][]byte, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
		values[i] = r.Value
	}
	return entrySeq(keys, values), nil
}

func (m *sqliteMap) previous(ctx context.Context, tx *sqlx.Tx, key string) ([]byte, bool, error) {
	var prev []byte
	err := tx.GetContext(ctx, &prev,
		`SELECT value FROM entries WHERE namespace = ? AND key = ?`, m.namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return prev, true, nil
}

func (m *sqliteMap) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
