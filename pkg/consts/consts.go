package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// DefaultHost is the SurrealDB endpoint used when none is configured.
	DefaultHost = "http://localhost:8000"

	// DefaultPath is the migration directory used when none is configured.
	DefaultPath = "./"

	// DefaultNamespace is the SurrealDB namespace used when none is configured.
	DefaultNamespace = "default"

	// DefaultDatabase is the database used when none is configured.
	DefaultDatabase = "dev"

	// DefaultLedgerTable is the name of the table recording applied migrations.
	DefaultLedgerTable = "migrations"

	// DefaultConfigFile is the optional configuration file looked up in the
	// working directory.
	DefaultConfigFile = "ssm.yaml"

	// SurrealExt is the extension of SurrealQL migration files.
	SurrealExt = ".surql"

	// SQLExt is the extension of migration files for SQL backends.
	SQLExt = ".sql"

	// MinVersionWidth is the minimum zero-padded width of generated migration versions.
	MinVersionWidth = 3
)
