// Package store provides the record stores a migration run reads from and
// writes back to.
//
// Two backends implement Store:
//   - SQLite (default): one table per collection, documents as JSON text,
//     indexes as json_extract expression indexes.
//   - PostgreSQL: one table per collection, documents as JSONB, indexes on
//     doc #>> '{path}' expressions.
//
// # Access Pattern
//
// Reads are forward-only and keyset paged by record id, so at most one
// query is in flight and writes between pages never disturb iteration.
// Bulk updates are unordered: every operation is attempted and a failing
// operation never blocks its siblings. Per-operation failures are counted
// in the BulkResult, not returned as errors.
//
// Stores and collections are never created by a migration: Open rejects a
// SQLite file that does not exist, and Cursor and CreateIndex fail with
// ErrCollectionNotFound for a collection without a table.
//
// # Database Configuration (SQLite)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - single connection: SQLite allows one writer
package store
