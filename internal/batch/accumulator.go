// Package batch buffers per-record patches into bounded batches and
// submits each batch as one unordered bulk update.
package batch

import (
	"context"
	"log/slog"

	"github.com/roach88/docmigrate/internal/doc"
)

// Writer submits a bulk update. Store implementations satisfy it.
type Writer interface {
	BulkUpdate(ctx context.Context, collection string, ops []doc.Update) (doc.BulkResult, error)
}

// Stats are the running totals of an Accumulator.
type Stats struct {
	Pushed      int // operations accepted by Push
	Flushes     int // non-empty batches flushed (or discarded in dry-run)
	Modified    int // modified count reported by the store
	Failed      int // operations the store rejected
	BatchErrors int // flushes whose bulk write returned an error
}

// Accumulator collects update operations and flushes them in batches of at
// most size operations.
//
// Failed operations are never retried: the gap between processed and
// modified counts keeps data problems visible.
type Accumulator struct {
	writer     Writer
	collection string
	size       int
	dryRun     bool
	logger     *slog.Logger

	buf   []doc.Update
	stats Stats
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithDryRun makes Flush log and discard batches instead of writing them.
func WithDryRun(dryRun bool) Option {
	return func(a *Accumulator) { a.dryRun = dryRun }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Accumulator) { a.logger = logger }
}

// New creates an Accumulator. A size below 1 is treated as 1.
func New(w Writer, collection string, size int, opts ...Option) *Accumulator {
	if size < 1 {
		size = 1
	}
	a := &Accumulator{
		writer:     w,
		collection: collection,
		size:       size,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.buf = make([]doc.Update, 0, size)
	return a
}

// Push buffers an update for id. Empty patches are dropped. When the buffer
// reaches the batch size it is flushed.
func (a *Accumulator) Push(ctx context.Context, id string, patch *doc.Patch) error {
	if patch.IsEmpty() {
		return nil
	}
	a.buf = append(a.buf, doc.Update{ID: id, Patch: patch})
	a.stats.Pushed++
	if len(a.buf) >= a.size {
		return a.Flush(ctx)
	}
	return nil
}

// Flush submits the buffered operations and clears the buffer. A bulk
// write error is logged and counted, not returned: the run continues with
// the next batch. Only context cancellation stops it.
func (a *Accumulator) Flush(ctx context.Context) error {
	if len(a.buf) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ops := a.buf
	a.buf = make([]doc.Update, 0, a.size)
	a.stats.Flushes++

	if a.dryRun {
		a.logger.Info("dry-run: batch not written", "collection", a.collection, "operations", len(ops))
		return nil
	}

	result, err := a.writer.BulkUpdate(ctx, a.collection, ops)
	a.stats.Modified += result.Modified
	a.stats.Failed += result.Failed
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		a.stats.BatchErrors++
		a.logger.Error("bulk write failed", "collection", a.collection,
			"operations", len(ops), "modified", result.Modified, "error", err)
		return nil
	}
	a.logger.Info("batch written", "collection", a.collection,
		"operations", len(ops), "modified", result.Modified, "failed", result.Failed)
	return nil
}

// Pending returns the number of buffered operations.
func (a *Accumulator) Pending() int {
	return len(a.buf)
}

// Stats returns the running totals.
func (a *Accumulator) Stats() Stats {
	return a.stats
}
