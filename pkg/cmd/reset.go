package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/database"
	"github.com/pseudomuto/ssm/pkg/executor"
	"github.com/urfave/cli/v3"
)

var errPurgeNotConfirmed = errors.New("--purge removes the whole database, pass --yes or set SSM_ASSUME_YES to confirm")

// reset creates the reset command, which removes the ledger so that every
// migration is considered pending again. Objects created by migrations are
// left in place unless --purge removes the whole database.
//
// Example usage:
//
//	ssm -H ws://localhost:8000 reset
//	ssm -H ws://localhost:8000 -d scratch reset --purge --yes
func reset(p commandParams) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Remove the migration ledger",
		Description: `Remove the ledger table so the next apply runs every migration again.
Applied migrations are not reversed. With --purge the whole database is
removed as well (not supported by SQLite, delete the file instead). Purging
must be confirmed with --yes or SSM_ASSUME_YES.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "purge",
				Usage: "also remove the database",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "confirm removing the database with --purge",
				Sources: cli.EnvVars("SSM_ASSUME_YES"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			purge := cmd.Bool("purge")
			if purge && !cmd.Bool("yes") {
				return errPurgeNotConfirmed
			}

			conn, err := database.Open(ctx, p.Config)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			if err := executor.Reset(ctx, conn, purge); err != nil {
				return err
			}

			if purge {
				fmt.Fprintf(cmd.Root().Writer, "removed ledger %s and database %s\n", p.Config.Table, p.Config.Database)
				return nil
			}

			fmt.Fprintf(cmd.Root().Writer, "removed ledger %s\n", p.Config.Table)
			return nil
		},
	}
}
