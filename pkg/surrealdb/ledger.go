package surrealdb

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/migrator"
	"github.com/pseudomuto/ssm/pkg/script"
	"github.com/pseudomuto/ssm/pkg/utils"
	surreal "github.com/surrealdb/surrealdb.go"
)

type (
	// Ledger stores applied migrations in a SurrealDB table.
	Ledger struct {
		db       *surreal.DB
		table    string
		database string
	}

	ledgerRow struct {
		Version         int64  `json:"version"`
		Label           string `json:"label"`
		Hash            string `json:"hash"`
		ExecutionTimeMS int64  `json:"execution_time_ms"`
		AppliedAt       string `json:"applied_at"`
	}
)

// DefineStatements returns the statements creating the ledger table, its
// fields and the unique index on version. Every statement is idempotent.
func DefineStatements(table string) []string {
	t := utils.BacktickIdentifier(table)
	return []string{
		fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMAFULL", t),
		fmt.Sprintf("DEFINE FIELD IF NOT EXISTS version ON TABLE %s TYPE int", t),
		fmt.Sprintf("DEFINE FIELD IF NOT EXISTS label ON TABLE %s TYPE string DEFAULT ''", t),
		fmt.Sprintf("DEFINE FIELD IF NOT EXISTS hash ON TABLE %s TYPE string DEFAULT ''", t),
		fmt.Sprintf("DEFINE FIELD IF NOT EXISTS execution_time_ms ON TABLE %s TYPE int DEFAULT 0", t),
		fmt.Sprintf("DEFINE FIELD IF NOT EXISTS applied_at ON TABLE %s TYPE datetime DEFAULT time::now()", t),
		fmt.Sprintf("DEFINE INDEX IF NOT EXISTS %s ON TABLE %s FIELDS version UNIQUE",
			utils.BacktickIdentifier(table+"_version"), t),
	}
}

// RecordStatement returns the statement creating a ledger entry from the
// variables returned by RecordVars.
func RecordStatement(table string) string {
	return fmt.Sprintf(
		"CREATE %s SET version = $version, label = $label, hash = $hash, "+
			"execution_time_ms = $execution_time_ms, applied_at = <datetime> $applied_at",
		utils.BacktickIdentifier(table),
	)
}

// RecordVars returns the query variables describing rev.
func RecordVars(rev *migrator.Revision) (map[string]any, error) {
	if rev.Version > math.MaxInt64 {
		return nil, errors.Errorf("version %d does not fit in a surrealdb int", rev.Version)
	}

	return map[string]any{
		"version":           int64(rev.Version),
		"label":             rev.Label,
		"hash":              rev.Hash,
		"execution_time_ms": rev.ExecutionTime.Milliseconds(),
		"applied_at":        rev.AppliedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// TransactionScript wraps the statements of src and the ledger entry for rev
// in a single transaction.
//
// Example:
//
//	sql, vars, err := surrealdb.TransactionScript("migrations", mig.Statement, rev)
//	// BEGIN TRANSACTION;
//	// DEFINE TABLE user SCHEMALESS;
//	// CREATE `migrations` SET version = $version, ...;
//	// COMMIT TRANSACTION;
func TransactionScript(table, src string, rev *migrator.Revision) (string, map[string]any, error) {
	vars, err := RecordVars(rev)
	if err != nil {
		return "", nil, err
	}

	stmts, err := script.Split(src)
	if err != nil {
		return "", nil, errors.Wrapf(err, "failed to split migration %d", rev.Version)
	}

	texts := make([]string, 0, len(stmts)+3)
	texts = append(texts, "BEGIN TRANSACTION")
	texts = append(texts, script.Texts(stmts)...)
	texts = append(texts, RecordStatement(table), "COMMIT TRANSACTION")

	return script.Join(texts...), vars, nil
}

// EnsureInitialized defines the ledger table when it does not exist.
func (l *Ledger) EnsureInitialized(ctx context.Context) error {
	if _, err := query[any](ctx, l.db, script.Join(DefineStatements(l.table)...), nil); err != nil {
		return errors.Wrapf(err, "failed to define ledger table %s", l.table)
	}

	return nil
}

// AppliedVersions reads every ledger entry. Selecting from a table that was
// never defined returns no rows, so a missing ledger yields an empty set.
func (l *Ledger) AppliedVersions(ctx context.Context) (*migrator.RevisionSet, error) {
	results, err := query[[]ledgerRow](ctx, l.db, fmt.Sprintf(
		"SELECT version, label, hash, execution_time_ms, <string> applied_at AS applied_at FROM %s ORDER BY version ASC",
		utils.BacktickIdentifier(l.table),
	), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query ledger")
	}

	var revisions []*migrator.Revision
	for _, rows := range results {
		for _, row := range rows {
			rev, err := row.revision()
			if err != nil {
				return nil, err
			}

			revisions = append(revisions, rev)
		}
	}

	return migrator.NewRevisionSet(revisions), nil
}

// Record creates a ledger entry for rev.
func (l *Ledger) Record(ctx context.Context, rev *migrator.Revision) error {
	vars, err := RecordVars(rev)
	if err != nil {
		return err
	}

	_, err = query[any](ctx, l.db, RecordStatement(l.table), vars)
	return err
}

// Teardown removes the ledger table, and the whole database when purge is set.
func (l *Ledger) Teardown(purge bool) ([]string, error) {
	return TeardownStatements(l.table, l.database, purge), nil
}

// TeardownStatements returns the statements removing the ledger table and,
// when purge is set, the database holding it.
func TeardownStatements(table, database string, purge bool) []string {
	stmts := []string{"REMOVE TABLE IF EXISTS " + utils.BacktickIdentifier(table)}
	if purge {
		stmts = append(stmts, "REMOVE DATABASE IF EXISTS "+utils.BacktickIdentifier(database))
	}

	return stmts
}

func (r ledgerRow) revision() (*migrator.Revision, error) {
	if r.Version < 0 {
		return nil, errors.Errorf("invalid ledger version %d", r.Version)
	}

	at, err := time.Parse(time.RFC3339Nano, r.AppliedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid applied_at for version %d", r.Version)
	}

	return &migrator.Revision{
		Version:       uint64(r.Version),
		Label:         r.Label,
		Hash:          r.Hash,
		AppliedAt:     at,
		ExecutionTime: time.Duration(r.ExecutionTimeMS) * time.Millisecond,
	}, nil
}
