package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/docmigrate/internal/config"
	"github.com/roach88/docmigrate/internal/migrate"
	"github.com/roach88/docmigrate/internal/normalize"
	"github.com/roach88/docmigrate/internal/store"
)

// RootOptions holds the output flags and the test hooks of the command.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	LogJSON bool

	// OpenStore allows overriding the store opener (for testing).
	// If nil, defaults to store.Open.
	OpenStore func(ctx context.Context, uri string) (store.Store, error)

	// Clock and IDs allow pinning time and generated ids (for testing).
	Clock migrate.Clock
	IDs   normalize.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the docmigrate command.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the docmigrate command with the given
// options; flags parsed later are written into opts.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docmigrate",
		Short: "Normalize every record of a collection in place",
		Long: `docmigrate rewrites every record of one collection into its canonical form.

It checks unique keys for collisions, streams the collection through the
field normalizers, writes the resulting patches in unordered batches and
finally creates the collection's indexes. It runs in dry-run mode unless
DRY_RUN=false (or --dry-run=false) is given, and is safe to re-run.

Configuration comes from the environment or the matching flags:
  STORE_URI    --store-uri    record store URI (required)
  HASH_COST    --hash-cost    bcrypt cost (default 10)
  DRY_RUN      --dry-run      compute changes without writing (default true)
  BATCH_SIZE   --batch-size   operations per bulk write (default 1000)
  COLLECTION   --collection   collection to migrate (default providers)

Example:
  STORE_URI=sqlite:///var/lib/app.db docmigrate
  docmigrate --store-uri postgres://localhost/app --dry-run=false --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging, including planned patches")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.Flags().BoolVar(&opts.LogJSON, "log-json", false, "write logs as JSON")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runMigration(cmd *cobra.Command, opts *RootOptions) error {
	if !slices.Contains(ValidFormats, opts.Format) {
		return NewExitError(ExitFailure,
			fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := NewLogger(cmd.ErrOrStderr(), opts.Verbose, opts.LogJSON)

	loader, err := config.NewLoader()
	if err != nil {
		return WrapExitError(ExitFailure, "configuration error", err)
	}
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return WrapExitError(ExitFailure, "configuration error", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		logger.Error("configuration error", "error", err)
		_ = out.Error(CodeConfig, err.Error(), nil)
		return WrapExitError(ExitFailure, "configuration error", err)
	}

	openStore := opts.OpenStore
	if openStore == nil {
		openStore = store.Open
	}
	open := func(ctx context.Context) (store.Store, error) {
		return openStore(ctx, cfg.StoreURI)
	}

	migrateOpts := []migrate.Option{migrate.WithLogger(logger)}
	if opts.Clock != nil {
		migrateOpts = append(migrateOpts, migrate.WithClock(opts.Clock))
	}
	if opts.IDs != nil {
		migrateOpts = append(migrateOpts, migrate.WithIDGenerator(opts.IDs))
	}
	orch := migrate.New(open, migrate.Config{
		Collection: cfg.Collection,
		BatchSize:  cfg.BatchSize,
		DryRun:     cfg.DryRun,
		HashCost:   cfg.HashCost,
	}, migrateOpts...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	summary, err := orch.Run(ctx)
	if err != nil {
		logger.Error("migration failed", "state", summary.State.String(), "error", err)
		_ = out.Error(CodeMigration, err.Error(), summary)
		return WrapExitError(ExitFailure, "migration failed", err)
	}
	return out.Success(summary)
}
