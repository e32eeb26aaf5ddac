// Package precheck finds uniqueness collisions before any write, so a
// unique index is never attempted on data that would violate it.
//
// Keys are compared in the form the migration will write them, so the
// check sees exactly the values the unique index will be built on.
package precheck

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/docmigrate/internal/doc"
	"github.com/roach88/docmigrate/internal/store"
	"github.com/roach88/docmigrate/internal/transform"
)

// DefaultPageSize is the cursor page size when Run is given none.
const DefaultPageSize = 1000

// Source streams the records of a collection. Store implementations
// satisfy it.
type Source interface {
	Cursor(ctx context.Context, collection string, pageSize int) (store.Cursor, error)
}

// Key is a candidate unique key. Value returns the grouping value of a
// record, or false when the record has none and takes no part.
type Key struct {
	Field string
	Value func(doc.Record) (string, bool)
}

// Canonicalizer derives a field's migrated value. *transform.Transformer
// satisfies it.
type Canonicalizer interface {
	Canonical(r doc.Record, field string) (any, bool)
}

// MigratedKey groups records by the value field will hold after migration.
func MigratedKey(c Canonicalizer, field string) Key {
	return Key{
		Field: field,
		Value: func(r doc.Record) (string, bool) {
			v, ok := c.Canonical(r, field)
			if !ok {
				return "", false
			}
			return keyString(v)
		},
	}
}

// DefaultKeys are the natural keys that get unique indexes: the provider
// code and the e-mail address.
func DefaultKeys(c Canonicalizer) []Key {
	return []Key{
		MigratedKey(c, transform.FieldCode),
		MigratedKey(c, transform.FieldEmail),
	}
}

func keyString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	default:
		return fmt.Sprint(val), true
	}
}

// Run reads the collection once and returns every group of records
// sharing a key value, sorted by key then value. It is read-only.
// Records that cannot be decoded are skipped; the streaming stage counts
// them.
func Run(ctx context.Context, src Source, collection string, keys []Key, pageSize int, logger *slog.Logger) ([]doc.Collision, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	cur, err := src.Cursor(ctx, collection, pageSize)
	if err != nil {
		return nil, fmt.Errorf("precheck: %w", err)
	}
	defer cur.Close()

	counts := make([]map[string]int, len(keys))
	for i := range counts {
		counts[i] = map[string]int{}
	}
	scanned := 0
	for cur.Next(ctx) {
		rec, err := cur.Record()
		if err != nil {
			continue
		}
		scanned++
		for i, key := range keys {
			if v, ok := key.Value(rec); ok {
				counts[i][v]++
			}
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("precheck: %w", err)
	}

	var all []doc.Collision
	for i, key := range keys {
		for value, n := range counts[i] {
			if n > 1 {
				all = append(all, doc.Collision{Key: key.Field, Value: value, Count: n})
			}
		}
	}
	slices.SortFunc(all, func(a, b doc.Collision) int {
		return cmp.Or(cmp.Compare(a.Key, b.Key), cmp.Compare(a.Value, b.Value))
	})
	for _, c := range all {
		logger.Warn("duplicate key found",
			"collection", collection, "key", c.Key, "value", c.Value, "count", c.Count)
	}
	logger.Info("precheck complete", "collection", collection,
		"records", scanned, "keys", len(keys), "collisions", len(all))
	return all, nil
}

// Keys returns the distinct key names that have collisions.
func Keys(collisions []doc.Collision) []string {
	seen := map[string]bool{}
	var keys []string
	for _, c := range collisions {
		if !seen[c.Key] {
			seen[c.Key] = true
			keys = append(keys, c.Key)
		}
	}
	return keys
}
