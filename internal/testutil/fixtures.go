// Package testutil provides fixtures and deterministic helpers shared by
// package tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/docmigrate/internal/doc"
	"github.com/roach88/docmigrate/internal/store"
)

// IDField is the fixture key holding the record id.
const IDField = "_id"

// Fixture is a YAML file of raw records:
//
//	collection: providers
//	records:
//	  - _id: prv-001
//	    name: "  kamal  perera "
type Fixture struct {
	Collection string           `yaml:"collection"`
	Records    []map[string]any `yaml:"records"`
}

// ParseFixture decodes fixture YAML into records. Values are normalized
// through JSON so they have the same Go types as records read from a store.
func ParseFixture(data []byte) (string, []doc.Record, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return "", nil, fmt.Errorf("parse fixture: %w", err)
	}
	records := make([]doc.Record, 0, len(fx.Records))
	for i, raw := range fx.Records {
		id, _ := raw[IDField].(string)
		if id == "" {
			return "", nil, fmt.Errorf("parse fixture: record %d has no %s", i, IDField)
		}
		delete(raw, IDField)
		data, err := json.Marshal(raw)
		if err != nil {
			return "", nil, fmt.Errorf("parse fixture: record %s: %w", id, err)
		}
		rec, err := doc.DecodeRecord(id, data)
		if err != nil {
			return "", nil, fmt.Errorf("parse fixture: %w", err)
		}
		records = append(records, rec)
	}
	return fx.Collection, records, nil
}

// LoadFixture reads a fixture file.
func LoadFixture(t *testing.T, path string) (string, []doc.Record) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "read fixture %s", path)
	collection, records, err := ParseFixture(data)
	require.NoError(t, err)
	return collection, records
}

// NewSQLiteStore opens a store in a temp directory with the collection
// created and seeded with records. The returned URI addresses the same
// database file.
func NewSQLiteStore(t *testing.T, collection string, records ...doc.Record) (*store.SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.db")
	s, err := store.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureCollection(context.Background(), collection))
	if len(records) > 0 {
		require.NoError(t, s.Insert(context.Background(), collection, records...))
	}
	return s, "sqlite://" + path
}

// Dump reads every record of the collection, keyed by id.
func Dump(t *testing.T, s store.Store, collection string) map[string]map[string]any {
	t.Helper()
	ctx := context.Background()
	cur, err := s.Cursor(ctx, collection, 100)
	require.NoError(t, err)
	defer cur.Close()

	out := map[string]map[string]any{}
	for cur.Next(ctx) {
		rec, err := cur.Record()
		require.NoError(t, err)
		out[rec.ID] = rec.Fields
	}
	require.NoError(t, cur.Err())
	return out
}

// DumpJSON renders Dump as indented JSON with sorted keys.
func DumpJSON(t *testing.T, s store.Store, collection string) []byte {
	t.Helper()
	data, err := json.MarshalIndent(Dump(t, s, collection), "", "  ")
	require.NoError(t, err)
	return append(data, '\n')
}

// IDs returns the sorted ids of records.
func IDs(records []doc.Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	sort.Strings(ids)
	return ids
}
