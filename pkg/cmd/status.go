package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pseudomuto/ssm/pkg/config"
	"github.com/pseudomuto/ssm/pkg/database"
	"github.com/pseudomuto/ssm/pkg/migrator"
	"github.com/urfave/cli/v3"
)

// status creates the status command, which lists every migration file with
// its ledger state. Reading the ledger never creates it.
//
// Example output:
//
//	VERSION  STATUS    APPLIED AT            FILE
//	1        applied   2024-05-01T12:30:00Z  001_create_users.surql
//	2        modified  2024-05-01T12:30:01Z  002_add_index.surql
//	3        pending                         003_seed.surql
//
//	2 applied, 1 pending
func status(p commandParams) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show applied and pending migrations",
		Description: `List every migration in --path with its state in the ledger.

Applied migrations whose file changed after they were applied are shown as
modified. They are not run again by apply.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStatus(ctx, cmd, p.Config)
		},
	}
}

func runStatus(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	ext, err := migrationExt(cfg)
	if err != nil {
		return err
	}

	dir, err := migrator.LoadMigrationDirPath(cfg.Path, ext)
	if err != nil {
		return err
	}

	conn, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	applied, err := conn.Ledger().AppliedVersions(ctx)
	if err != nil {
		return err
	}

	if len(dir.Migrations) == 0 {
		fmt.Fprintf(cmd.Root().Writer, "no %s migrations found in %s\n", ext, cfg.Path)
		return nil
	}

	fmt.Fprintf(cmd.Root().Writer, "%-8s %-9s %-21s %s\n", "VERSION", "STATUS", "APPLIED AT", "FILE")
	for _, mig := range dir.Migrations {
		state, at := "pending", ""
		if rev := applied.Get(mig.Version); rev != nil {
			state, at = "applied", rev.AppliedAt.UTC().Format(time.RFC3339)
			if applied.IsModified(mig) {
				state = "modified"
			}
		}

		fmt.Fprintf(cmd.Root().Writer, "%-8d %-9s %-21s %s\n", mig.Version, state, at, mig.Filename)
	}

	pending := len(dir.Pending(applied))
	fmt.Fprintf(cmd.Root().Writer, "\n%d applied, %d pending\n", len(dir.Migrations)-pending, pending)
	return nil
}
