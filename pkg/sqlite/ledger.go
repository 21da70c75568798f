package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/migrator"
	"github.com/pseudomuto/ssm/pkg/utils"
)

type (
	// Ledger stores applied migrations in a SQLite table.
	Ledger struct {
		db    *sql.DB
		table string
	}

	execer interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	}
)

// CreateTableStatement returns the DDL creating the ledger table.
func CreateTableStatement(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	version INTEGER PRIMARY KEY,
	label TEXT NOT NULL DEFAULT '',
	hash TEXT NOT NULL DEFAULT '',
	execution_time_ms INTEGER NOT NULL DEFAULT 0,
	applied_at TEXT NOT NULL DEFAULT (strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now'))
)`, utils.DoubleQuoteIdentifier(table))
}

// EnsureInitialized creates the ledger table when it does not exist.
func (l *Ledger) EnsureInitialized(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, CreateTableStatement(l.table)); err != nil {
		return errors.Wrapf(err, "failed to create ledger table %s", l.table)
	}

	return nil
}

// AppliedVersions reads every ledger entry. A missing ledger table yields an
// empty set.
func (l *Ledger) AppliedVersions(ctx context.Context) (*migrator.RevisionSet, error) {
	var exists int
	if err := l.db.QueryRowContext(
		ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		l.table,
	).Scan(&exists); err != nil {
		return nil, errors.Wrap(err, "failed to check for ledger table")
	}

	if exists == 0 {
		return migrator.NewRevisionSet(nil), nil
	}

	rows, err := l.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT version, label, hash, execution_time_ms, applied_at FROM %s ORDER BY version",
		utils.DoubleQuoteIdentifier(l.table),
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query ledger")
	}
	defer func() { _ = rows.Close() }()

	var revisions []*migrator.Revision
	for rows.Next() {
		var (
			version   int64
			label     string
			hash      string
			execMS    int64
			appliedAt string
		)
		if err := rows.Scan(&version, &label, &hash, &execMS, &appliedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan ledger row")
		}

		at, err := time.Parse(time.RFC3339Nano, appliedAt)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid applied_at for version %d", version)
		}

		revisions = append(revisions, &migrator.Revision{
			Version:       uint64(version),
			Label:         label,
			Hash:          hash,
			AppliedAt:     at,
			ExecutionTime: time.Duration(execMS) * time.Millisecond,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read ledger")
	}

	return migrator.NewRevisionSet(revisions), nil
}

// Record inserts rev into the ledger.
func (l *Ledger) Record(ctx context.Context, rev *migrator.Revision) error {
	return l.insert(ctx, l.db, rev)
}

// Teardown drops the ledger table. SQLite databases are files, so purging is
// not supported.
func (l *Ledger) Teardown(purge bool) ([]string, error) {
	if purge {
		return nil, errors.New("sqlite does not support purging the database, delete the database file instead")
	}

	return []string{"DROP TABLE IF EXISTS " + utils.DoubleQuoteIdentifier(l.table)}, nil
}

func (l *Ledger) insert(ctx context.Context, db execer, rev *migrator.Revision) error {
	if rev.Version > math.MaxInt64 {
		return errors.Errorf("version %d does not fit in a sqlite integer", rev.Version)
	}

	_, err := db.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (version, label, hash, execution_time_ms, applied_at) VALUES (?, ?, ?, ?, ?)",
		utils.DoubleQuoteIdentifier(l.table),
	),
		int64(rev.Version),
		rev.Label,
		rev.Hash,
		rev.ExecutionTime.Milliseconds(),
		rev.AppliedAt.UTC().Format(time.RFC3339Nano),
	)

	return err
}
