package doc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one raw document read from the store.
type Record struct {
	ID     string
	Fields map[string]any
}

// Lookup returns the value of a top-level field. Missing fields, nulls and
// strings that are empty after trimming all report ok=false.
func (r Record) Lookup(field string) (any, bool) {
	return present(r.Fields[field])
}

// LookupIn is Lookup for a field of a nested object.
func LookupIn(obj map[string]any, field string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	return present(obj[field])
}

func present(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, false
		}
	}
	return v, true
}

// Has reports whether the field key exists at all, even if its value is null.
func (r Record) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// Clone returns a record whose top-level field map can be modified without
// affecting r. Nested values are shared.
func (r Record) Clone() Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{ID: r.ID, Fields: fields}
}

// DecodeRecord parses a stored JSON document into a Record.
func DecodeRecord(id string, data []byte) (Record, error) {
	fields := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return Record{}, fmt.Errorf("decode record %s: %w", id, err)
		}
	}
	return Record{ID: id, Fields: fields}, nil
}

// Encode serializes the record fields. Object keys are emitted in sorted
// order, so equal documents encode to identical bytes.
func (r Record) Encode() ([]byte, error) {
	fields := r.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode record %s: %w", r.ID, err)
	}
	return data, nil
}

// Equal compares two document values by their JSON encoding, so an int
// written by a normalizer equals the float64 the store decodes it back as.
func Equal(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ja) == string(jb)
}
