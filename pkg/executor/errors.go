package executor

import "fmt"

type (
	// MigrationError is returned when a migration's statement fails. The
	// migration was not recorded in the ledger.
	MigrationError struct {
		Version  uint64
		Filename string
		Err      error
	}

	// LedgerWriteError is returned when a migration's statement succeeded but
	// its ledger entry could not be written.
	LedgerWriteError struct {
		Version uint64
		Err     error
	}

	// ResetError is returned when one of the statements that remove the ledger
	// fails.
	ResetError struct {
		Statement string
		Err       error
	}
)

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %d (%s) failed: %v", e.Version, e.Filename, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("migration %d was applied but could not be recorded: %v", e.Version, e.Err)
}

func (e *LedgerWriteError) Unwrap() error {
	return e.Err
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("reset statement %q failed: %v", e.Statement, e.Err)
}

func (e *ResetError) Unwrap() error {
	return e.Err
}
