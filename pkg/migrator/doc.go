// Package migrator discovers versioned migration files and models the ledger
// that records which of them have been applied.
//
// A migration directory is a flat directory of files named
// <version>[_<label>]<ext>, for example:
//
//	migrations/
//	├── 001.surql
//	├── 002_add_index.surql
//	└── 010_backfill_users.surql
//
// The version is the leading run of digits parsed as an unsigned integer, so
// 001 and 1 name the same version. The optional label is descriptive only.
// Migrations are always returned in strictly ascending version order.
//
// The ledger is the table inside the target database that records applied
// versions. This package defines the Ledger contract and the Revision and
// RevisionSet types; the storage backends implement it.
//
// Example usage:
//
//	dir, err := migrator.LoadMigrationDirPath("./migrations", ".surql")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	applied, err := ledger.AppliedVersions(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, mig := range dir.Pending(applied) {
//		fmt.Printf("pending: %s\n", mig.Filename)
//	}
package migrator
