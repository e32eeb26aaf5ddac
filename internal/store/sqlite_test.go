package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/roach88/docmigrate/internal/doc"
)

func TestOpenSQLite_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	defer s.Close()

	if err := s.EnsureCollection(context.Background(), "providers"); err != nil {
		t.Fatalf("EnsureCollection() failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpenSQLite_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		pragma   string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		if err := s.verifyPragma(tt.pragma, tt.expected); err != nil {
			t.Error(err)
		}
	}
}

func TestOpenSQLite_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("first OpenSQLite() failed: %v", err)
	}
	if err := s1.Insert(ctx, "providers", doc.Record{ID: "p1", Fields: map[string]any{"name": "Kamal"}}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	s1.Close()

	s2, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("second OpenSQLite() failed: %v", err)
	}
	defer s2.Close()

	rec, err := s2.Get(ctx, "providers", "p1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if rec.Fields["name"] != "Kamal" {
		t.Errorf("name = %v, want Kamal", rec.Fields["name"])
	}
}

func TestCursor_IteratesInIDOrderAcrossPages(t *testing.T) {
	s := createTestStore(t)
	records := map[string]map[string]any{}
	for i := 0; i < 7; i++ {
		records[fmt.Sprintf("p%02d", i)] = map[string]any{"n": float64(i)}
	}
	seed(t, s, "providers", records)

	for _, pageSize := range []int{1, 3, 7, 100} {
		cur, err := s.Cursor(context.Background(), "providers", pageSize)
		if err != nil {
			t.Fatalf("Cursor() failed: %v", err)
		}
		got := readAll(t, cur)
		if len(got) != 7 {
			t.Fatalf("page size %d: got %d records, want 7", pageSize, len(got))
		}
		for i, rec := range got {
			if want := fmt.Sprintf("p%02d", i); rec.ID != want {
				t.Errorf("page size %d: record %d = %s, want %s", pageSize, i, rec.ID, want)
			}
		}
	}
}

func TestCursor_MissingCollection(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Cursor(context.Background(), "nothing_here", 10)
	if !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("Cursor() error = %v, want ErrCollectionNotFound", err)
	}
}

func TestCursor_EmptyCollection(t *testing.T) {
	s := createTestStore(t)
	if err := s.EnsureCollection(context.Background(), "providers"); err != nil {
		t.Fatalf("EnsureCollection() failed: %v", err)
	}
	cur, err := s.Cursor(context.Background(), "providers", 10)
	if err != nil {
		t.Fatalf("Cursor() failed: %v", err)
	}
	if got := readAll(t, cur); len(got) != 0 {
		t.Errorf("got %d records from an empty collection", len(got))
	}
}

func TestCursor_DecodeErrorIsPerRecord(t *testing.T) {
	s := createTestStore(t)
	seed(t, s, "providers", map[string]map[string]any{"p1": {"a": 1.0}, "p3": {"a": 3.0}})
	if _, err := s.DB().Exec(`INSERT INTO "providers" (id, doc) VALUES ('p2', '{broken')`); err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	ctx := context.Background()
	cur, err := s.Cursor(ctx, "providers", 2)
	if err != nil {
		t.Fatalf("Cursor() failed: %v", err)
	}
	defer cur.Close()

	var ok, bad int
	for cur.Next(ctx) {
		if _, err := cur.Record(); err != nil {
			bad++
		} else {
			ok++
		}
	}
	if cur.Err() != nil || ok != 2 || bad != 1 {
		t.Errorf("ok=%d bad=%d err=%v, want ok=2 bad=1 err=nil", ok, bad, cur.Err())
	}
}

func TestCursor_InvalidCollection(t *testing.T) {
	s := createTestStore(t)
	if _, err := s.Cursor(context.Background(), `providers"; DROP TABLE x; --`, 10); err == nil {
		t.Error("expected error for invalid collection name")
	}
}

func TestBulkUpdate_AppliesSetAndUnset(t *testing.T) {
	s := createTestStore(t)
	seed(t, s, "providers", map[string]map[string]any{
		"p1": {"phone": "+94771234567", "status": "active"},
	})
	ctx := context.Background()

	p := doc.NewPatch()
	p.SetField("phoneNumber", "0771234567")
	p.SetField("status", "ACTIVE")
	p.UnsetField("phone")

	result, err := s.BulkUpdate(ctx, "providers", []doc.Update{{ID: "p1", Patch: p}})
	if err != nil {
		t.Fatalf("BulkUpdate() failed: %v", err)
	}
	if result != (doc.BulkResult{Modified: 1}) {
		t.Errorf("result = %+v, want Modified=1", result)
	}

	rec, err := s.Get(ctx, "providers", "p1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	want := map[string]any{"phoneNumber": "0771234567", "status": "ACTIVE"}
	if !reflect.DeepEqual(rec.Fields, want) {
		t.Errorf("fields = %v, want %v", rec.Fields, want)
	}
}

func TestBulkUpdate_UnchangedNotCounted(t *testing.T) {
	s := createTestStore(t)
	seed(t, s, "providers", map[string]map[string]any{"p1": {"status": "ACTIVE"}})

	result, err := s.BulkUpdate(context.Background(), "providers", []doc.Update{
		{ID: "p1", Patch: setPatch("status", "ACTIVE")},
		{ID: "missing", Patch: setPatch("status", "ACTIVE")},
	})
	if err != nil {
		t.Fatalf("BulkUpdate() failed: %v", err)
	}
	if result != (doc.BulkResult{}) {
		t.Errorf("result = %+v, want zero", result)
	}
}

func TestBulkUpdate_UnorderedFailureIsolated(t *testing.T) {
	s := createTestStore(t)
	seed(t, s, "providers", map[string]map[string]any{
		"p1": {"name": "a"},
		"p2": {"name": "b"},
		"p3": {"name": "c"},
	})
	ctx := context.Background()

	invalid := &doc.Patch{
		Set:   map[string]any{"name": "B"},
		Unset: map[string]struct{}{"name": {}},
	}
	result, err := s.BulkUpdate(ctx, "providers", []doc.Update{
		{ID: "p1", Patch: setPatch("name", "A")},
		{ID: "p2", Patch: invalid},
		{ID: "p3", Patch: setPatch("name", "C")},
	})
	if err != nil {
		t.Fatalf("BulkUpdate() failed: %v", err)
	}
	if result != (doc.BulkResult{Modified: 2, Failed: 1}) {
		t.Errorf("result = %+v, want Modified=2 Failed=1", result)
	}

	for id, want := range map[string]string{"p1": "A", "p2": "b", "p3": "C"} {
		rec, err := s.Get(ctx, "providers", id)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", id, err)
		}
		if rec.Fields["name"] != want {
			t.Errorf("%s name = %v, want %s", id, rec.Fields["name"], want)
		}
	}
}

func TestBulkUpdate_Empty(t *testing.T) {
	s := createTestStore(t)
	result, err := s.BulkUpdate(context.Background(), "providers", nil)
	if err != nil || result != (doc.BulkResult{}) {
		t.Errorf("BulkUpdate(nil) = %+v, %v", result, err)
	}
}

func TestCreateIndex_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	if err := s.EnsureCollection(ctx, "providers"); err != nil {
		t.Fatalf("EnsureCollection() failed: %v", err)
	}
	spec := doc.IndexSpec{Name: "providers_address_city_idx", Field: "address.city"}

	for i := 0; i < 3; i++ {
		if err := s.CreateIndex(ctx, "providers", spec); err != nil {
			t.Fatalf("CreateIndex() iteration %d failed: %v", i, err)
		}
	}
	names, err := s.ListIndexes(ctx, "providers")
	if err != nil {
		t.Fatalf("ListIndexes() failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"providers_address_city_idx"}) {
		t.Errorf("indexes = %v", names)
	}
}

func TestCreateIndex_UniqueFailsOnDuplicates(t *testing.T) {
	s := createTestStore(t)
	seed(t, s, "providers", map[string]map[string]any{
		"p1": {"email": "a@x.com"},
		"p2": {"email": "a@x.com"},
	})
	err := s.CreateIndex(context.Background(), "providers",
		doc.IndexSpec{Name: "providers_email_uniq", Field: "email", Unique: true})
	if err == nil {
		t.Error("expected unique index creation to fail on duplicate data")
	}
}

func TestCreateIndex_MissingCollection(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	err := s.CreateIndex(ctx, "provders",
		doc.IndexSpec{Name: "provders_status_idx", Field: "status"})
	if !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("CreateIndex() error = %v, want ErrCollectionNotFound", err)
	}
	exists, err := s.collectionExists(ctx, "provders")
	if err != nil {
		t.Fatalf("collectionExists() failed: %v", err)
	}
	if exists {
		t.Error("CreateIndex created the missing collection")
	}
}

func TestListIndexes_Empty(t *testing.T) {
	s := createTestStore(t)
	names, err := s.ListIndexes(context.Background(), "providers")
	if err != nil {
		t.Fatalf("ListIndexes() failed: %v", err)
	}
	if names == nil || len(names) != 0 {
		t.Errorf("indexes = %#v, want empty non-nil slice", names)
	}
}
