// Package migratortest provides an in-memory database and ledger for testing
// code that runs migrations.
package migratortest

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/consts"
	"github.com/pseudomuto/ssm/pkg/migrator"
)

const (
	// DropLedgerStatement is returned by Ledger.Teardown. Executing it clears the
	// ledger.
	DropLedgerStatement = "DROP LEDGER"

	// PurgeStatement is returned by Ledger.Teardown when purging. Executing it
	// clears the ledger and every executed statement.
	PurgeStatement = "DROP DATABASE"
)

type (
	// Database is an in-memory connection that records every executed
	// statement and keeps its ledger in memory. It is safe for concurrent use.
	Database struct {
		mu sync.Mutex

		// ExecErr, when set, decides whether a statement fails. A non-nil return
		// fails the statement and it is not recorded in Statements.
		ExecErr func(stmt string) error

		ext        string
		statements []string
		ledger     *Ledger
	}

	// TxDatabase is a Database that can execute a migration and record its
	// revision atomically.
	TxDatabase struct {
		*Database
	}

	// Ledger is the in-memory ledger of a Database.
	Ledger struct {
		db *Database

		// AppliedErr, when set, is returned by AppliedVersions.
		AppliedErr error

		// RecordErr, when set, is returned by Record instead of writing the entry.
		RecordErr error

		// TeardownErr, when set, is returned by Teardown.
		TeardownErr error

		initialized bool
		initCalls   int
		revisions   []*migrator.Revision
	}
)

// New returns an empty Database using the SurrealQL file extension.
func New() *Database {
	db := &Database{ext: consts.SurrealExt}
	db.ledger = &Ledger{db: db}
	return db
}

// NewTx returns an empty TxDatabase.
func NewTx() *TxDatabase {
	return &TxDatabase{Database: New()}
}

// FailOn returns an ExecErr func failing any statement equal to stmt with err.
func FailOn(stmt string, err error) func(string) error {
	return func(s string) error {
		if s == stmt {
			return err
		}

		return nil
	}
}

// Exec records stmt unless ExecErr rejects it. The teardown statements clear
// the in-memory state instead of being recorded.
func (d *Database) Exec(_ context.Context, stmt string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.execLocked(stmt)
}

// Ledger returns the in-memory ledger.
func (d *Database) Ledger() migrator.Ledger {
	return d.ledger
}

// Fake returns the ledger with its test hooks exposed.
func (d *Database) Fake() *Ledger {
	return d.ledger
}

// Extension returns the migration file extension.
func (d *Database) Extension() string {
	return d.ext
}

// Statements returns every statement executed so far, in order.
func (d *Database) Statements() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.statements)
}

// ExecAndRecord executes the migration and records rev, or does neither.
func (d *TxDatabase) ExecAndRecord(_ context.Context, mig *migrator.Migration, rev *migrator.Revision) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ledger.RecordErr != nil {
		return errors.Wrap(d.ledger.RecordErr, "transaction aborted")
	}

	if d.ExecErr != nil {
		if err := d.ExecErr(mig.Statement); err != nil {
			return errors.Wrap(err, "transaction aborted")
		}
	}

	d.statements = append(d.statements, mig.Statement)
	d.ledger.revisions = append(d.ledger.revisions, rev)
	return nil
}

func (d *Database) execLocked(stmt string) error {
	if d.ExecErr != nil {
		if err := d.ExecErr(stmt); err != nil {
			return err
		}
	}

	switch stmt {
	case DropLedgerStatement:
		d.ledger.initialized = false
		d.ledger.revisions = nil
	case PurgeStatement:
		d.ledger.initialized = false
		d.ledger.revisions = nil
		d.statements = nil
	default:
		d.statements = append(d.statements, stmt)
	}

	return nil
}

// EnsureInitialized marks the ledger as created.
func (l *Ledger) EnsureInitialized(context.Context) error {
	l.db.mu.Lock()
	defer l.db.mu.Unlock()

	l.initialized = true
	l.initCalls++
	return nil
}

// AppliedVersions returns the recorded revisions. A ledger that was never
// initialized is empty.
func (l *Ledger) AppliedVersions(context.Context) (*migrator.RevisionSet, error) {
	l.db.mu.Lock()
	defer l.db.mu.Unlock()

	if l.AppliedErr != nil {
		return nil, l.AppliedErr
	}

	return migrator.NewRevisionSet(l.revisions), nil
}

// Record appends rev unless RecordErr is set.
func (l *Ledger) Record(_ context.Context, rev *migrator.Revision) error {
	l.db.mu.Lock()
	defer l.db.mu.Unlock()

	if l.RecordErr != nil {
		return l.RecordErr
	}

	if !l.initialized {
		return errors.New("ledger is not initialized")
	}

	l.revisions = append(l.revisions, rev)
	return nil
}

// Teardown returns DropLedgerStatement, followed by PurgeStatement when purge
// is set.
func (l *Ledger) Teardown(purge bool) ([]string, error) {
	if l.TeardownErr != nil {
		return nil, l.TeardownErr
	}

	stmts := []string{DropLedgerStatement}
	if purge {
		stmts = append(stmts, PurgeStatement)
	}

	return stmts, nil
}

// Initialized reports whether the ledger currently exists.
func (l *Ledger) Initialized() bool {
	l.db.mu.Lock()
	defer l.db.mu.Unlock()

	return l.initialized
}

// InitCalls returns how many times EnsureInitialized was called.
func (l *Ledger) InitCalls() int {
	l.db.mu.Lock()
	defer l.db.mu.Unlock()

	return l.initCalls
}

// Versions returns the recorded versions in ascending order.
func (l *Ledger) Versions() []uint64 {
	l.db.mu.Lock()
	defer l.db.mu.Unlock()

	return migrator.NewRevisionSet(l.revisions).Versions()
}
