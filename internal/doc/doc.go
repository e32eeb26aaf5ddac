// Package doc defines the document model shared by every stage of a migration run.
//
// A Record is an opaque mapping of field name to value, identified by an
// immutable id. Values follow encoding/json decoding conventions: strings,
// float64 numbers, bools, nil, []any and map[string]any.
//
// A Patch is the additive description of what must change on one record:
// fields to set and fields to unset. A field is never in both.
package doc
