package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/consts"
	"github.com/pseudomuto/ssm/pkg/migrator"
	"github.com/pseudomuto/ssm/pkg/utils"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Conn is a connection to a SQLite database and the ledger stored in it.
type Conn struct {
	db     *sql.DB
	ledger *Ledger
}

// Open connects to the SQLite database named by host and uses table as the
// ledger.
//
// Example:
//
//	conn, err := sqlite.Open(ctx, "sqlite://./dev.db", "migrations")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
func Open(ctx context.Context, host, table string) (*Conn, error) {
	if err := utils.ValidateIdentifier("ledger table", table); err != nil {
		return nil, err
	}

	dsn, err := DSN(host)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database: %s", dsn)
	}

	// A single connection keeps :memory: databases alive and serializes the run.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to connect to sqlite database: %s", dsn)
	}

	return &Conn{db: db, ledger: &Ledger{db: db, table: table}}, nil
}

// DSN converts a host URL into a modernc.org/sqlite data source name.
func DSN(host string) (string, error) {
	switch {
	case strings.HasPrefix(host, "sqlite://"):
		path := strings.TrimPrefix(host, "sqlite://")
		if path == "" {
			return "", errors.Errorf("invalid sqlite host %q: missing path", host)
		}

		return path, nil
	case strings.HasPrefix(host, "file:"):
		return host, nil
	default:
		return "", errors.Errorf("invalid sqlite host %q: expected sqlite:// or file: scheme", host)
	}
}

// Exec runs stmt, which may contain several statements.
func (c *Conn) Exec(ctx context.Context, stmt string) error {
	_, err := c.db.ExecContext(ctx, stmt)
	return err
}

// ExecAndRecord runs the migration and writes its ledger entry in one
// transaction.
func (c *Conn) ExecAndRecord(ctx context.Context, mig *migrator.Migration, rev *migrator.Revision) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, mig.Statement); err != nil {
		return err
	}

	if err := c.ledger.insert(ctx, tx, rev); err != nil {
		return errors.Wrap(err, "failed to record migration")
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// Ledger returns the ledger stored in this database.
func (c *Conn) Ledger() migrator.Ledger {
	return c.ledger
}

// Extension returns the migration file extension for SQLite.
func (c *Conn) Extension() string {
	return consts.SQLExt
}

// DB returns the underlying database handle.
func (c *Conn) DB() *sql.DB {
	return c.db
}

// Close closes the database.
func (c *Conn) Close() error {
	return c.db.Close()
}
