package surrealdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/consts"
	"github.com/pseudomuto/ssm/pkg/migrator"
	"github.com/pseudomuto/ssm/pkg/utils"
	surreal "github.com/surrealdb/surrealdb.go"
)

type (
	// Options configures a SurrealDB connection.
	Options struct {
		// Host is the server endpoint, e.g. ws://localhost:8000.
		Host string

		// Namespace and Database select where migrations run.
		Namespace string
		Database  string

		// Username and Password sign in as a root user when Username is set.
		Username string
		Password string

		// Table is the ledger table name.
		Table string
	}

	// Conn is a SurrealDB session and the ledger stored in its database.
	Conn struct {
		db     *surreal.DB
		ledger *Ledger
	}
)

// Open connects to SurrealDB, signs in when credentials are provided and
// selects the namespace and database.
//
// Example:
//
//	conn, err := surrealdb.Open(ctx, surrealdb.Options{
//		Host:      "ws://localhost:8000",
//		Namespace: "default",
//		Database:  "dev",
//		Username:  "root",
//		Password:  "root",
//		Table:     "migrations",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
func Open(ctx context.Context, opts Options) (*Conn, error) {
	for kind, value := range map[string]string{
		"ledger table": opts.Table,
		"namespace":    opts.Namespace,
		"database":     opts.Database,
	} {
		if err := utils.ValidateIdentifier(kind, value); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := surreal.New(opts.Host)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to surrealdb at %s", opts.Host)
	}

	if err := db.Use(opts.Namespace, opts.Database); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to use namespace %s database %s", opts.Namespace, opts.Database)
	}

	if opts.Username != "" {
		token, err := db.SignIn(&surreal.Auth{
			Username: opts.Username,
			Password: opts.Password,
		})
		if err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "failed to sign in as %s", opts.Username)
		}

		if err := db.Authenticate(token); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "failed to authenticate session")
		}
	}

	return &Conn{
		db: db,
		ledger: &Ledger{
			db:       db,
			table:    opts.Table,
			database: opts.Database,
		},
	}, nil
}

// Exec sends stmt as one query and fails when any statement in it fails.
// Scripts holding only whitespace are not sent.
func (c *Conn) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}

	_, err := query[any](ctx, c.db, stmt, nil)
	return err
}

// ExecAndRecord runs the migration and creates its ledger entry inside one
// transaction.
func (c *Conn) ExecAndRecord(ctx context.Context, mig *migrator.Migration, rev *migrator.Revision) error {
	script, vars, err := TransactionScript(c.ledger.table, mig.Statement, rev)
	if err != nil {
		return err
	}

	_, err = query[any](ctx, c.db, script, vars)
	return err
}

// Ledger returns the ledger stored in this database.
func (c *Conn) Ledger() migrator.Ledger {
	return c.ledger
}

// Extension returns the SurrealQL migration file extension.
func (c *Conn) Extension() string {
	return consts.SurrealExt
}

// Close closes the session.
func (c *Conn) Close() error {
	return c.db.Close()
}

// query runs sql and returns the result of every statement. It fails on the
// first statement whose status is not OK.
func query[T any](ctx context.Context, db *surreal.DB, sql string, vars map[string]any) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if vars == nil {
		vars = map[string]any{}
	}

	res, err := surreal.Query[T](db, sql, vars)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}

	if res == nil {
		return nil, nil
	}

	results := make([]T, 0, len(*res))
	for i, r := range *res {
		if !strings.EqualFold(r.Status, "OK") {
			return nil, errors.Errorf("statement %d failed: %v", i+1, r.Result)
		}

		results = append(results, r.Result)
	}

	return results, nil
}
