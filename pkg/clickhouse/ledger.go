package clickhouse

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/migrator"
	"github.com/pseudomuto/ssm/pkg/utils"
)

// Ledger stores applied migrations in a MergeTree table. ClickHouse does not
// enforce unique keys, so a version is only recorded after the applied set was
// read and found not to contain it.
type Ledger struct {
	conn     driver.Conn
	database string
	table    string
	cluster  string
}

// InitStatements returns the DDL creating the ledger database and table. When
// cluster is set the statements run ON CLUSTER and the table is replicated.
func InitStatements(database, table, cluster string) []string {
	onCluster := ""
	engine := "MergeTree"
	if cluster != "" {
		onCluster = " ON CLUSTER " + utils.BacktickIdentifier(cluster)
		engine = "ReplicatedMergeTree"
	}

	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s%s", utils.BacktickIdentifier(database), onCluster),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s%s (
	version UInt64,
	label String,
	hash String,
	execution_time_ms UInt64,
	applied_at DateTime64(3, 'UTC')
)
ENGINE = %s
ORDER BY version`, qualified(database, table), onCluster, engine),
	}
}

// TeardownStatements returns the statements dropping the ledger table and,
// when purge is set, its database.
func TeardownStatements(database, table, cluster string, purge bool) []string {
	onCluster := ""
	if cluster != "" {
		onCluster = " ON CLUSTER " + utils.BacktickIdentifier(cluster)
	}

	stmts := []string{"DROP TABLE IF EXISTS " + qualified(database, table) + onCluster}
	if purge {
		stmts = append(stmts, "DROP DATABASE IF EXISTS "+utils.BacktickIdentifier(database)+onCluster)
	}

	return stmts
}

// EnsureInitialized creates the ledger database and table when missing.
func (l *Ledger) EnsureInitialized(ctx context.Context) error {
	for _, stmt := range InitStatements(l.database, l.table, l.cluster) {
		if err := l.conn.Exec(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to create ledger table %s.%s", l.database, l.table)
		}
	}

	return nil
}

// AppliedVersions reads every ledger entry. A missing ledger table yields an
// empty set.
func (l *Ledger) AppliedVersions(ctx context.Context) (*migrator.RevisionSet, error) {
	var exists uint64
	if err := l.conn.QueryRow(
		ctx,
		"SELECT count() FROM system.tables WHERE database = ? AND name = ?",
		l.database,
		l.table,
	).Scan(&exists); err != nil {
		return nil, errors.Wrap(err, "failed to check for ledger table")
	}

	if exists == 0 {
		return migrator.NewRevisionSet(nil), nil
	}

	rows, err := l.conn.Query(ctx, fmt.Sprintf(
		"SELECT version, label, hash, execution_time_ms, applied_at FROM %s ORDER BY version",
		qualified(l.database, l.table),
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query ledger")
	}
	defer func() { _ = rows.Close() }()

	var revisions []*migrator.Revision
	for rows.Next() {
		var (
			rev    migrator.Revision
			execMS uint64
		)
		if err := rows.Scan(&rev.Version, &rev.Label, &rev.Hash, &execMS, &rev.AppliedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan ledger row")
		}

		if execMS > math.MaxInt64/uint64(time.Millisecond) {
			execMS = math.MaxInt64 / uint64(time.Millisecond)
		}
		rev.ExecutionTime = time.Duration(execMS) * time.Millisecond
		rev.AppliedAt = rev.AppliedAt.UTC()
		revisions = append(revisions, &rev)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read ledger")
	}

	return migrator.NewRevisionSet(revisions), nil
}

// Record appends rev to the ledger.
func (l *Ledger) Record(ctx context.Context, rev *migrator.Revision) error {
	batch, err := l.conn.PrepareBatch(ctx, fmt.Sprintf(
		"INSERT INTO %s (version, label, hash, execution_time_ms, applied_at)",
		qualified(l.database, l.table),
	))
	if err != nil {
		return errors.Wrap(err, "failed to prepare ledger insert")
	}

	if err := batch.Append(
		rev.Version,
		rev.Label,
		rev.Hash,
		uint64(max(rev.ExecutionTime.Milliseconds(), 0)),
		rev.AppliedAt.UTC(),
	); err != nil {
		_ = batch.Abort()
		return errors.Wrap(err, "failed to append ledger row")
	}

	return errors.Wrap(batch.Send(), "failed to write ledger row")
}

// Teardown drops the ledger table, and the database when purge is set.
func (l *Ledger) Teardown(purge bool) ([]string, error) {
	return TeardownStatements(l.database, l.table, l.cluster, purge), nil
}

func qualified(database, table string) string {
	return utils.BacktickIdentifier(database) + "." + utils.BacktickIdentifier(table)
}
