// Package migrate runs a one-shot normalization migration over a single
// collection.
//
// A run moves through fixed states:
//
//	Init -> Prechecking -> Streaming -> Flushing -> Indexing -> Done
//
// Init opens the store. Prechecking looks for unique-key collisions.
// Streaming reads every record through a forward-only cursor, transforms it
// and pushes the patch into the batch accumulator; a record that fails is
// counted and skipped. Flushing submits the last partial batch. Indexing
// creates indexes when the precheck found no collisions.
//
// Dry-run is not a state: every state runs, but Flushing and Indexing never
// mutate the store.
//
// There is no checkpoint. An interrupted run restarts from the beginning,
// which is safe because the transformer is idempotent.
package migrate
