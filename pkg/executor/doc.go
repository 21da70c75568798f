// Package executor applies pending migrations to a database and resets the
// ledger that tracks them.
//
// # Core Components
//
//   - Executor: runs the pending migrations of a MigrationDir in ascending
//     version order, recording each one in the ledger after it succeeds
//   - Conn: the single capability the executor needs from a database, which
//     is executing a script
//   - Transactor: optional capability used in atomic mode to execute a
//     migration and record it in one transaction
//   - Connection: a Conn bundled with its Ledger and migration file extension,
//     accepted by the Migrate and Reset entry points
//
// # Failure Semantics
//
// Execution stops at the first failure. Every migration before the failing one
// stays applied and recorded; the failing one and everything after it are not
// recorded. Failures are reported as *MigrationError when a statement fails
// and *LedgerWriteError when the statement ran but its ledger entry could not
// be written. In the second case the database holds the migration's effects
// while the ledger does not, so the migration runs again on the next attempt.
// Atomic mode closes that gap on backends that support transactions.
//
// # Usage Example
//
//	conn, err := database.Open(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
//
//	applied, err := executor.Migrate(ctx, conn, "./migrations")
//	if err != nil {
//		var migErr *executor.MigrationError
//		if errors.As(err, &migErr) {
//			log.Fatalf("migration %d failed: %v", migErr.Version, migErr.Err)
//		}
//		log.Fatal(err)
//	}
//
//	fmt.Printf("applied %d migrations\n", applied)
package executor
