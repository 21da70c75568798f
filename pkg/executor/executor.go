package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/migrator"
)

type (
	// Conn executes a migration script against a database. The script is
	// passed through unmodified and may hold several statements.
	Conn interface {
		Exec(ctx context.Context, stmt string) error
	}

	// Transactor is implemented by connections that can execute a migration
	// and write its ledger entry in a single transaction.
	Transactor interface {
		ExecAndRecord(ctx context.Context, mig *migrator.Migration, rev *migrator.Revision) error
	}

	// Connection is a Conn together with the ledger stored in the same
	// database and the file extension its migrations use.
	Connection interface {
		Conn
		Ledger() migrator.Ledger
		Extension() string
	}

	// Executor applies migrations in ascending version order and records each
	// one in the ledger.
	//
	// Example usage:
	//
	//	exec := executor.New(executor.Config{
	//		Conn:   conn,
	//		Ledger: conn.Ledger(),
	//	})
	//
	//	summary, err := exec.Execute(ctx, dir)
	//	if err != nil {
	//		log.Fatal(err)
	//	}
	//
	//	for _, result := range summary.Results {
	//		fmt.Printf("%d %s: %s\n", result.Version, result.Filename, result.Status)
	//	}
	Executor struct {
		conn   Conn
		ledger migrator.Ledger
		logger *slog.Logger
		atomic bool
		dryRun bool
	}

	// Config contains configuration options for creating a new Executor.
	Config struct {
		// Conn executes migration scripts.
		Conn Conn

		// Ledger records applied migrations.
		Ledger migrator.Ledger

		// Logger receives progress output. Defaults to slog.Default().
		Logger *slog.Logger

		// Atomic executes each migration and its ledger entry in one
		// transaction when Conn implements Transactor.
		Atomic bool

		// DryRun reports pending migrations without executing or recording them.
		DryRun bool
	}

	// ExecutionResult is the outcome for a single migration.
	ExecutionResult struct {
		// Version of the migration.
		Version uint64

		// Filename of the migration.
		Filename string

		// Status indicates the outcome.
		Status ExecutionStatus

		// Error is set when Status is StatusFailed.
		Error error

		// ExecutionTime records how long the migration took to execute.
		ExecutionTime time.Duration

		// Modified is set for skipped migrations whose file changed after they
		// were applied.
		Modified bool

		// Revision is the ledger entry written for the migration, or the existing
		// entry for skipped migrations.
		Revision *migrator.Revision
	}

	// ExecutionStatus represents the outcome of a migration.
	ExecutionStatus string

	// Summary is the outcome of a single Execute call.
	Summary struct {
		// RunID identifies the run in log output.
		RunID string

		// Results holds one entry per migration that was considered, in version
		// order. It ends at the first failure.
		Results []*ExecutionResult
	}
)

const (
	// StatusSuccess indicates the migration was executed and recorded.
	StatusSuccess ExecutionStatus = "success"

	// StatusFailed indicates the migration failed.
	StatusFailed ExecutionStatus = "failed"

	// StatusSkipped indicates the migration was already applied.
	StatusSkipped ExecutionStatus = "skipped"

	// StatusPending indicates the migration would run. Only used for dry runs.
	StatusPending ExecutionStatus = "pending"
)

// New creates a new Executor.
func New(config Config) *Executor {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		conn:   config.Conn,
		ledger: config.Ledger,
		logger: logger,
		atomic: config.Atomic,
		dryRun: config.DryRun,
	}
}

// Execute applies every migration in dir that is not yet recorded in the ledger.
//
// The ledger is created when missing, then each pending migration is executed
// and recorded before the next one starts. Execution stops at the first
// failure and the summary returned alongside the error includes the failed
// result. Running Execute again after a success applies nothing.
//
// Already applied migrations whose contents changed since are reported with a
// warning but are never re-run.
func (e *Executor) Execute(ctx context.Context, dir *migrator.MigrationDir) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	logger := e.logger.With("run_id", summary.RunID)

	if !e.dryRun {
		if err := e.ledger.EnsureInitialized(ctx); err != nil {
			return summary, errors.Wrap(err, "failed to initialize ledger")
		}
	}

	applied, err := e.ledger.AppliedVersions(ctx)
	if err != nil {
		return summary, errors.Wrap(err, "failed to load applied versions")
	}

	tx, atomic := e.transactor(logger)
	logger.Debug("loaded ledger", "applied", applied.Len(), "migrations", len(dir.Migrations), "atomic", atomic)

	for _, mig := range dir.Migrations {
		if rev := applied.Get(mig.Version); rev != nil {
			result := &ExecutionResult{
				Version:  mig.Version,
				Filename: mig.Filename,
				Status:   StatusSkipped,
				Modified: applied.IsModified(mig),
				Revision: rev,
			}
			if result.Modified {
				logger.Warn("applied migration has been modified", "version", mig.Version, "file", mig.Filename)
			}

			summary.Results = append(summary.Results, result)
			continue
		}

		if e.dryRun {
			logger.Info("would apply migration", "version", mig.Version, "file", mig.Filename)
			summary.Results = append(summary.Results, &ExecutionResult{
				Version:  mig.Version,
				Filename: mig.Filename,
				Status:   StatusPending,
			})
			continue
		}

		result := e.executeMigration(ctx, logger, mig, tx)
		summary.Results = append(summary.Results, result)
		if result.Status == StatusFailed {
			return summary, result.Error
		}
	}

	if summary.Applied() == 0 && !e.dryRun {
		logger.Info("no pending migrations")
	}

	return summary, nil
}

// Applied returns the number of migrations executed and recorded.
func (s *Summary) Applied() int {
	return s.count(StatusSuccess)
}

// Skipped returns the number of migrations that were already applied.
func (s *Summary) Skipped() int {
	return s.count(StatusSkipped)
}

// Pending returns the number of migrations a dry run would apply.
func (s *Summary) Pending() int {
	return s.count(StatusPending)
}

func (s *Summary) count(status ExecutionStatus) int {
	n := 0
	for _, result := range s.Results {
		if result.Status == status {
			n++
		}
	}

	return n
}

func (e *Executor) transactor(logger *slog.Logger) (Transactor, bool) {
	if !e.atomic {
		return nil, false
	}

	tx, ok := e.conn.(Transactor)
	if !ok {
		logger.Warn("connection does not support transactions, migrations will not be atomic")
	}

	return tx, ok
}

func (e *Executor) executeMigration(
	ctx context.Context,
	logger *slog.Logger,
	mig *migrator.Migration,
	tx Transactor,
) *ExecutionResult {
	logger = logger.With("version", mig.Version, "file", mig.Filename)
	logger.Info("applying migration")

	result := &ExecutionResult{
		Version:  mig.Version,
		Filename: mig.Filename,
		Status:   StatusFailed,
	}

	start := time.Now()
	if tx != nil {
		// Execution time is unknown until the transaction commits, so atomic
		// revisions record zero.
		rev := migrator.NewRevision(mig, 0)
		if err := tx.ExecAndRecord(ctx, mig, rev); err != nil {
			result.ExecutionTime = time.Since(start)
			result.Error = &MigrationError{Version: mig.Version, Filename: mig.Filename, Err: err}
			logger.Error("migration failed", "error", err)
			return result
		}

		result.ExecutionTime = time.Since(start)
		result.Status = StatusSuccess
		result.Revision = rev
		logger.Info("migration applied", "duration", result.ExecutionTime)
		return result
	}

	if err := e.conn.Exec(ctx, mig.Statement); err != nil {
		result.ExecutionTime = time.Since(start)
		result.Error = &MigrationError{Version: mig.Version, Filename: mig.Filename, Err: err}
		logger.Error("migration failed", "error", err)
		return result
	}
	result.ExecutionTime = time.Since(start)

	rev := migrator.NewRevision(mig, result.ExecutionTime)
	if err := e.ledger.Record(ctx, rev); err != nil {
		result.Error = &LedgerWriteError{Version: mig.Version, Err: err}
		logger.Error("migration applied but not recorded", "error", err)
		return result
	}

	result.Status = StatusSuccess
	result.Revision = rev
	logger.Info("migration applied", "duration", result.ExecutionTime)
	return result
}
