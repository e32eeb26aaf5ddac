package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/docmigrate/internal/batch"
	"github.com/roach88/docmigrate/internal/index"
	"github.com/roach88/docmigrate/internal/normalize"
	"github.com/roach88/docmigrate/internal/precheck"
	"github.com/roach88/docmigrate/internal/store"
	"github.com/roach88/docmigrate/internal/transform"
)

// Opener acquires the store connection for a run.
type Opener func(ctx context.Context) (store.Store, error)

// Config is the run configuration.
type Config struct {
	Collection string
	BatchSize  int
	DryRun     bool
	HashCost   int
}

// Clock provides the run start time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Orchestrator owns one migration run.
type Orchestrator struct {
	open   Opener
	cfg    Config
	logger *slog.Logger
	clock  Clock
	ids    normalize.IDGenerator
	keys   []precheck.Key
	state  State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithClock overrides the clock (for testing).
func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithIDGenerator overrides the nested element id generator (for testing).
func WithIDGenerator(g normalize.IDGenerator) Option {
	return func(o *Orchestrator) { o.ids = g }
}

// WithKeys overrides the unique keys checked before writing. By default
// code and email are checked in their migrated form.
func WithKeys(keys ...precheck.Key) Option {
	return func(o *Orchestrator) { o.keys = keys }
}

// New creates an Orchestrator.
func New(open Opener, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		open:   open,
		cfg:    cfg,
		logger: slog.Default(),
		clock:  systemClock{},
		ids:    normalize.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) enter(s State, summary *Summary) {
	o.state = s
	summary.State = s
	o.logger.Debug("migration state", "state", s.String())
}

// Run executes the migration. It always returns the summary built so far;
// err is non-nil when the run stopped early (store unavailable, cursor
// failure, cancellation, precheck or index errors). Per-record failures are
// counted in the summary and never returned.
func (o *Orchestrator) Run(ctx context.Context) (summary *Summary, err error) {
	summary = newSummary(o.cfg.Collection, o.cfg.DryRun)
	o.enter(StateInit, summary)
	start := o.clock.Now()

	st, err := o.open(ctx)
	if err != nil {
		return summary, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			o.logger.Error("error closing store", "error", closeErr)
		}
	}()
	o.logger.Info("migration starting",
		"collection", o.cfg.Collection, "dry_run", o.cfg.DryRun, "batch_size", o.cfg.BatchSize)

	t := transform.New(transform.Options{
		HashCost: o.cfg.HashCost,
		Now:      start,
		IDs:      o.ids,
	})
	keys := o.keys
	if keys == nil {
		keys = precheck.DefaultKeys(t)
	}

	o.enter(StatePrechecking, summary)
	collisions, err := precheck.Run(ctx, st, o.cfg.Collection, keys, o.cfg.BatchSize, o.logger)
	if err != nil {
		return summary, err
	}
	summary.Collisions = append(summary.Collisions, collisions...)
	if len(collisions) > 0 {
		o.logger.Warn("unique keys have collisions; normalization continues",
			"keys", precheck.Keys(collisions), "groups", len(collisions))
	}

	o.enter(StateStreaming, summary)
	acc := batch.New(st, o.cfg.Collection, o.cfg.BatchSize,
		batch.WithDryRun(o.cfg.DryRun), batch.WithLogger(o.logger))
	streamErr := o.stream(ctx, st, t, acc, summary)
	o.collect(acc, summary)
	if streamErr != nil {
		return summary, streamErr
	}

	o.enter(StateFlushing, summary)
	if err := acc.Flush(ctx); err != nil {
		return summary, fmt.Errorf("final flush: %w", err)
	}
	o.collect(acc, summary)

	o.enter(StateIndexing, summary)
	created, err := index.NewManager(st, o.cfg.Collection, o.cfg.DryRun, o.logger).
		EnsureIndexes(ctx, summary.Collisions)
	summary.IndexesCreated = append(summary.IndexesCreated, created...)
	if err != nil {
		return summary, err
	}

	o.enter(StateDone, summary)
	o.logger.Info("migration finished",
		"collection", summary.Collection,
		"processed", summary.Processed,
		"modified", summary.Modified,
		"errors", summary.Errors,
		"elapsed", o.clock.Now().Sub(start).String())
	return summary, nil
}

// stream reads the whole collection. Record-level failures are counted and
// logged; only cursor failures and cancellation stop the stream.
func (o *Orchestrator) stream(ctx context.Context, st store.Store, t *transform.Transformer, acc *batch.Accumulator, summary *Summary) error {
	cur, err := st.Cursor(ctx, o.cfg.Collection, o.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("open cursor: %w", err)
	}
	defer cur.Close()

	for cur.Next(ctx) {
		summary.Processed++
		rec, err := cur.Record()
		if err != nil {
			summary.Errors++
			o.logger.Error("record decode failed", "error", err)
			continue
		}
		patch, err := t.Transform(rec)
		if transform.IsRecordError(err) {
			summary.Errors++
			o.logger.Error("record transform failed", "id", rec.ID, "error", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("transform %s: %w", rec.ID, err)
		}
		if !patch.IsEmpty() {
			o.logger.Debug("record patch",
				"id", rec.ID, "set", patch.SetKeys(), "unset", patch.UnsetKeys())
		}
		if err := acc.Push(ctx, rec.ID, patch); err != nil {
			return fmt.Errorf("push %s: %w", rec.ID, err)
		}
		if summary.Processed%o.progressEvery() == 0 {
			o.logger.Info("progress", "processed", summary.Processed, "errors", summary.Errors)
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("cursor: %w", err)
	}
	return nil
}

func (o *Orchestrator) progressEvery() int {
	if o.cfg.BatchSize > 0 {
		return o.cfg.BatchSize
	}
	return 1000
}

func (o *Orchestrator) collect(acc *batch.Accumulator, summary *Summary) {
	stats := acc.Stats()
	summary.Planned = stats.Pushed
	summary.Batches = stats.Flushes
	summary.Modified = stats.Modified
	summary.Failed = stats.Failed
	summary.BatchErrors = stats.BatchErrors
}
