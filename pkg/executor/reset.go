package executor

import (
	"context"

	"github.com/pkg/errors"
)

// Reset executes the ledger's teardown statements in order, stopping at the
// first failure.
//
// Without purge the database is left as if the ledger had never been created,
// so the next Execute applies every migration again. Schema objects created by
// those migrations are not removed; with purge the whole database is.
func (e *Executor) Reset(ctx context.Context, purge bool) error {
	stmts, err := e.ledger.Teardown(purge)
	if err != nil {
		return errors.Wrap(err, "failed to plan reset")
	}

	for _, stmt := range stmts {
		e.logger.Debug("executing reset statement", "statement", stmt)
		if err := e.conn.Exec(ctx, stmt); err != nil {
			return &ResetError{Statement: stmt, Err: err}
		}
	}

	e.logger.Info("reset complete", "purge", purge)
	return nil
}
