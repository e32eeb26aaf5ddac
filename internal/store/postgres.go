package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roach88/docmigrate/internal/doc"
)

// PgxDB is the subset of pgxpool.Pool the Postgres store needs. It is
// satisfied by pgxmock pools in tests.
type PgxDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore keeps each collection in a table (id TEXT PRIMARY KEY, doc JSONB).
type PostgresStore struct {
	db PgxDB
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects a pgx pool and verifies it with a retried ping.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	if err := pingWithRetry(ctx, pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return NewPostgresStore(pool), nil
}

// NewPostgresStore wraps an already connected pool.
func NewPostgresStore(db PgxDB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// pgPath renders a field path as a jsonb text extraction:
// "address.city" becomes doc #>> '{address,city}'.
func pgPath(field string) string {
	return fmt.Sprintf(`doc #>> '{%s}'`, strings.ReplaceAll(field, ".", ","))
}

// undefinedTable is the SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// collectionErr maps a missing table to ErrCollectionNotFound.
func collectionErr(collection string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	return err
}

// Cursor iterates the collection in id order.
func (s *PostgresStore) Cursor(ctx context.Context, collection string, pageSize int) (Cursor, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	table := quoteIdent(collection)
	fetch := func(ctx context.Context, afterID string, limit int) ([]rawRecord, error) {
		query, args, err := squirrel.
			Select("id", "doc").
			From(table).
			Where(squirrel.Gt{"id": afterID}).
			OrderBy("id ASC").
			Limit(uint64(limit)).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("postgres: build page query: %w", err)
		}
		rows, err := s.db.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("postgres: query %s: %w", collection, collectionErr(collection, err))
		}
		defer rows.Close()

		var page []rawRecord
		for rows.Next() {
			var rec rawRecord
			if err := rows.Scan(&rec.ID, &rec.Data); err != nil {
				return nil, fmt.Errorf("postgres: scan %s: %w", collection, err)
			}
			page = append(page, rec)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("postgres: iterate %s: %w", collection, collectionErr(collection, err))
		}
		return page, nil
	}
	return newPagedCursor(fetch, pageSize), nil
}

// BulkUpdate runs each op as its own autocommit statement so one failure
// cannot abort the others. The statement only touches rows whose document
// actually changes, which makes the affected-row count the modified count.
func (s *PostgresStore) BulkUpdate(ctx context.Context, collection string, ops []doc.Update) (doc.BulkResult, error) {
	var result doc.BulkResult
	if err := checkCollection(collection); err != nil {
		return result, err
	}
	stmt := fmt.Sprintf(`
		UPDATE %[1]s SET doc = (doc || $1::jsonb) - $2::text[]
		WHERE id = $3 AND ((doc || $1::jsonb) - $2::text[]) IS DISTINCT FROM doc`,
		quoteIdent(collection))

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := op.Patch.Validate(); err != nil {
			result.Failed++
			continue
		}
		set := op.Patch.Set
		if set == nil {
			set = map[string]any{}
		}
		setJSON, err := json.Marshal(set)
		if err != nil {
			result.Failed++
			continue
		}
		tag, err := s.db.Exec(ctx, stmt, string(setJSON), op.Patch.UnsetKeys(), op.ID)
		if err != nil {
			result.Failed++
			continue
		}
		result.Modified += int(tag.RowsAffected())
	}
	return result, nil
}

// CreateIndex creates an expression index on the extracted text value.
func (s *PostgresStore) CreateIndex(ctx context.Context, collection string, spec doc.IndexSpec) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := checkField(spec.Field); err != nil {
		return err
	}
	if err := checkCollection(spec.Name); err != nil {
		return fmt.Errorf("index name: %w", err)
	}
	unique := ""
	if spec.Unique {
		unique = "UNIQUE "
	}
	stmt := fmt.Sprintf(`CREATE %sINDEX IF NOT EXISTS %s ON %s ((%s))`,
		unique, quoteIdent(spec.Name), quoteIdent(collection), pgPath(spec.Field))
	if _, err := s.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: create index %s: %w", spec.Name, collectionErr(collection, err))
	}
	return nil
}

// ListIndexes returns every index on the collection table, primary key included.
func (s *PostgresStore) ListIndexes(ctx context.Context, collection string) ([]string, error) {
	query, args, err := squirrel.
		Select("indexname").
		From("pg_indexes").
		Where(squirrel.Eq{"tablename": collection}).
		OrderBy("indexname").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build index query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list indexes %s: %w", collection, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("postgres: scan index name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate indexes: %w", err)
	}
	return names, nil
}
