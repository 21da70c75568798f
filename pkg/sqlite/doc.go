// Package sqlite runs migrations against an embedded SQLite database using the
// pure Go modernc.org/sqlite driver.
//
// The host URL selects the database file:
//
//	sqlite://./dev.db          relative path
//	sqlite:///var/lib/app.db   absolute path
//	sqlite://:memory:          private in-memory database
//	file:dev.db?mode=rwc       passed to the driver as a URI
//
// Migration files use the .sql extension. Each file is executed as a single
// script, so it may hold several statements. The ledger is a regular table,
// and because SQLite DDL is transactional the connection supports atomic
// migrations.
package sqlite
