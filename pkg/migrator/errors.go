package migrator

import "github.com/pkg/errors"

var (
	// ErrDirectoryNotFound is returned when the migration directory does not
	// exist or is not a directory.
	ErrDirectoryNotFound = errors.New("migration directory not found")

	// ErrMalformedVersion is returned for a migration file whose name starts
	// with a digit but does not follow the <version>[_<label>]<ext> pattern, or
	// whose version is greater than MaxVersion.
	ErrMalformedVersion = errors.New("malformed migration version")

	// ErrDuplicateVersion is returned when two files parse to the same version.
	ErrDuplicateVersion = errors.New("duplicate migration version")
)
