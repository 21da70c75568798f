package executor

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/migrator"
)

type (
	// Option customizes Migrate.
	Option func(*options)

	options struct {
		logger *slog.Logger
		ext    string
		atomic bool
		dryRun bool
	}
)

// WithLogger sets the logger used for progress output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithExtension overrides the migration file extension of the connection.
func WithExtension(ext string) Option {
	return func(o *options) { o.ext = ext }
}

// WithAtomic executes each migration and its ledger entry in one transaction
// when the connection supports it.
func WithAtomic(atomic bool) Option {
	return func(o *options) { o.atomic = atomic }
}

// WithDryRun reports pending migrations without applying them. Migrate then
// returns the number of migrations that would be applied.
func WithDryRun(dryRun bool) Option {
	return func(o *options) { o.dryRun = dryRun }
}

// Migrate loads the migrations in dirPath and applies the pending ones to conn.
// It returns the number of migrations applied, which is zero when everything
// was already up to date.
//
// Example usage:
//
//	n, err := executor.Migrate(ctx, conn, "./migrations", executor.WithAtomic(true))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("applied %d migrations\n", n)
func Migrate(ctx context.Context, conn Connection, dirPath string, opts ...Option) (int, error) {
	summary, err := MigrateSummary(ctx, conn, dirPath, opts...)
	if summary == nil {
		return 0, err
	}

	return summary.Applied() + summary.Pending(), err
}

// MigrateSummary behaves like Migrate but returns the full execution summary.
func MigrateSummary(ctx context.Context, conn Connection, dirPath string, opts ...Option) (*Summary, error) {
	o := &options{ext: conn.Extension()}
	for _, opt := range opts {
		opt(o)
	}

	dir, err := migrator.LoadMigrationDirPath(dirPath, o.ext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load migrations")
	}

	return New(Config{
		Conn:   conn,
		Ledger: conn.Ledger(),
		Logger: o.logger,
		Atomic: o.atomic,
		DryRun: o.dryRun,
	}).Execute(ctx, dir)
}

// Reset removes the ledger from conn's database, and the database itself when
// purge is set. Migrations that were applied are not reversed.
func Reset(ctx context.Context, conn Connection, purge bool) error {
	return New(Config{Conn: conn, Ledger: conn.Ledger()}).Reset(ctx, purge)
}
