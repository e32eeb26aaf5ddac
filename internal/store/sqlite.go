package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/docmigrate/internal/doc"
)

// SQLiteStore keeps each collection in a table (id TEXT PRIMARY KEY, doc TEXT)
// holding one JSON document per row.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite creates or opens a SQLite database at the given path or DSN.
// Open, used for migrations, only accepts existing databases.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := pingWithRetry(ctx, db.PingContext); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// openExistingSQLite opens a SQLite database that must already exist on
// disk. In-memory DSNs are passed through.
func openExistingSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if path, ok := sqliteFilePath(dsn); ok {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return OpenSQLite(ctx, dsn)
}

// sqliteFilePath extracts the file path of a SQLite DSN, or false for
// in-memory databases.
func sqliteFilePath(dsn string) (string, bool) {
	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" {
		return "", false
	}
	if params, err := url.ParseQuery(query); err == nil && params.Get("mode") == "memory" {
		return "", false
	}
	return path, true
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// EnsureCollection creates the collection table if it does not exist.
func (s *SQLiteStore) EnsureCollection(ctx context.Context, collection string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, doc TEXT NOT NULL)`,
		quoteIdent(collection),
	))
	if err != nil {
		return fmt.Errorf("ensure collection %s: %w", collection, err)
	}
	return nil
}

// Insert writes records, replacing any with the same id. It is used to seed
// collections; migrations only ever update.
func (s *SQLiteStore) Insert(ctx context.Context, collection string, records ...doc.Record) error {
	if err := s.EnsureCollection(ctx, collection); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, doc) VALUES (?, ?)`, quoteIdent(collection))
	for _, rec := range records {
		data, err := rec.Encode()
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, rec.ID, string(data)); err != nil {
			return fmt.Errorf("insert %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert: commit: %w", err)
	}
	return nil
}

// Get reads a single record. Returns sql.ErrNoRows if not found.
func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (doc.Record, error) {
	if err := checkCollection(collection); err != nil {
		return doc.Record{}, err
	}
	var data string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT doc FROM %s WHERE id = ?`, quoteIdent(collection)), id,
	).Scan(&data)
	if err != nil {
		return doc.Record{}, err
	}
	return doc.DecodeRecord(id, []byte(data))
}

// requireCollection fails with ErrCollectionNotFound unless the table exists.
func (s *SQLiteStore) requireCollection(ctx context.Context, collection string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	return nil
}

func (s *SQLiteStore) collectionExists(ctx context.Context, collection string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, collection,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("lookup collection %s: %w", collection, err)
	}
	return count > 0, nil
}

// Cursor iterates the collection in id order.
func (s *SQLiteStore) Cursor(ctx context.Context, collection string, pageSize int) (Cursor, error) {
	if err := s.requireCollection(ctx, collection); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT id, doc FROM %s WHERE id > ? ORDER BY id COLLATE BINARY ASC LIMIT ?`,
		quoteIdent(collection),
	)
	fetch := func(ctx context.Context, afterID string, limit int) ([]rawRecord, error) {
		rows, err := s.db.QueryContext(ctx, query, afterID, limit)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", collection, err)
		}
		defer rows.Close()

		var page []rawRecord
		for rows.Next() {
			var id, data string
			if err := rows.Scan(&id, &data); err != nil {
				return nil, fmt.Errorf("scan %s: %w", collection, err)
			}
			page = append(page, rawRecord{ID: id, Data: []byte(data)})
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate %s: %w", collection, err)
		}
		return page, nil
	}
	return newPagedCursor(fetch, pageSize), nil
}

// BulkUpdate applies ops inside one transaction. Each op runs under its own
// savepoint, so a failing op is rolled back alone and its siblings commit.
// A record is counted as modified only when its stored document changed.
func (s *SQLiteStore) BulkUpdate(ctx context.Context, collection string, ops []doc.Update) (doc.BulkResult, error) {
	var result doc.BulkResult
	if len(ops) == 0 {
		return result, nil
	}
	if err := checkCollection(collection); err != nil {
		return result, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("bulk update: begin tx: %w", err)
	}
	defer tx.Rollback()

	table := quoteIdent(collection)
	for _, op := range ops {
		if _, err := tx.ExecContext(ctx, "SAVEPOINT bulk_op"); err != nil {
			return doc.BulkResult{}, fmt.Errorf("bulk update: savepoint: %w", err)
		}
		modified, opErr := applyOne(ctx, tx, table, op)
		if opErr != nil {
			if _, err := tx.ExecContext(ctx, "ROLLBACK TO bulk_op"); err != nil {
				return doc.BulkResult{}, fmt.Errorf("bulk update: rollback op %s: %w", op.ID, err)
			}
			result.Failed++
		} else if modified {
			result.Modified++
		}
		if _, err := tx.ExecContext(ctx, "RELEASE bulk_op"); err != nil {
			return doc.BulkResult{}, fmt.Errorf("bulk update: release: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return doc.BulkResult{}, fmt.Errorf("bulk update: commit: %w", err)
	}
	return result, nil
}

func applyOne(ctx context.Context, tx *sql.Tx, table string, op doc.Update) (bool, error) {
	if err := op.Patch.Validate(); err != nil {
		return false, err
	}
	var data string
	err := tx.QueryRowContext(ctx, `SELECT doc FROM `+table+` WHERE id = ?`, op.ID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	current, err := doc.DecodeRecord(op.ID, []byte(data))
	if err != nil {
		return false, err
	}
	if !doc.Changes(current, op.Patch) {
		return false, nil
	}
	updated, err := doc.Apply(current, op.Patch).Encode()
	if err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE `+table+` SET doc = ? WHERE id = ?`, string(updated), op.ID); err != nil {
		return false, err
	}
	return true, nil
}

// CreateIndex creates a json_extract expression index on an existing
// collection. CREATE INDEX IF NOT EXISTS makes re-creation a no-op.
func (s *SQLiteStore) CreateIndex(ctx context.Context, collection string, spec doc.IndexSpec) error {
	if err := checkField(spec.Field); err != nil {
		return err
	}
	if err := checkCollection(spec.Name); err != nil {
		return fmt.Errorf("index name: %w", err)
	}
	if err := s.requireCollection(ctx, collection); err != nil {
		return err
	}
	unique := ""
	if spec.Unique {
		unique = "UNIQUE "
	}
	stmt := fmt.Sprintf(`CREATE %sINDEX IF NOT EXISTS %s ON %s (json_extract(doc, '$.%s'))`,
		unique, quoteIdent(spec.Name), quoteIdent(collection), spec.Field)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create index %s: %w", spec.Name, err)
	}
	return nil
}

// ListIndexes returns the explicitly created indexes of the collection.
func (s *SQLiteStore) ListIndexes(ctx context.Context, collection string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND name NOT LIKE 'sqlite_autoindex%'
		ORDER BY name
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("list indexes %s: %w", collection, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan index name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexes: %w", err)
	}
	return names, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *SQLiteStore) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if !strings.EqualFold(value, expected) {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
