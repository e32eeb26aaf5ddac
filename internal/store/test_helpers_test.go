package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/docmigrate/internal/doc"
)

// createTestStore creates a new file-backed SQLite store for testing.
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seed inserts records built from id/fields pairs.
func seed(t *testing.T, s *SQLiteStore, collection string, records map[string]map[string]any) {
	t.Helper()
	var recs []doc.Record
	for id, fields := range records {
		recs = append(recs, doc.Record{ID: id, Fields: fields})
	}
	if err := s.Insert(context.Background(), collection, recs...); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
}

// readAll drains a cursor.
func readAll(t *testing.T, cur Cursor) []doc.Record {
	t.Helper()
	ctx := context.Background()
	defer cur.Close()
	var out []doc.Record
	for cur.Next(ctx) {
		rec, err := cur.Record()
		if err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
		out = append(out, rec)
	}
	if err := cur.Err(); err != nil {
		t.Fatalf("cursor failed: %v", err)
	}
	return out
}

func setPatch(field string, value any) *doc.Patch {
	p := doc.NewPatch()
	p.SetField(field, value)
	return p
}
