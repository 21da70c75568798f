package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pseudomuto/ssm/pkg/database"
	"github.com/pseudomuto/ssm/pkg/executor"
	"github.com/urfave/cli/v3"
)

// apply creates the apply command for running pending migrations.
//
// Command flags:
//   - --dry-run: List the migrations that would run without executing them
//   - --atomic: Run each migration and its ledger entry in one transaction
//
// Example usage:
//
//	# Apply pending SurrealDB migrations from ./migrations
//	ssm -H ws://localhost:8000 -p ./migrations apply
//
//	# Preview pending SQLite migrations
//	ssm -H sqlite://./dev.db apply --dry-run
func apply(p commandParams) *cli.Command {
	return &cli.Command{
		Name:    "apply",
		Aliases: []string{"migrate"},
		Usage:   "Apply pending migrations",
		Description: `Apply every migration in --path whose version is not in the ledger, in
ascending version order. The ledger table is created on first use.

Execution stops at the first failing migration. Migrations before it stay
applied and recorded, so running apply again after fixing the file resumes
from the failed version.

With --atomic, backends that support transactions (SurrealDB and SQLite) run
each migration together with its ledger entry, so a failure leaves neither
behind.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "list pending migrations without applying them",
			},
			&cli.BoolFlag{
				Name:    "atomic",
				Usage:   "apply each migration and its ledger entry in one transaction",
				Sources: cli.EnvVars("SSM_ATOMIC"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			conn, err := database.Open(ctx, p.Config)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			dryRun := cmd.Bool("dry-run")
			summary, err := executor.MigrateSummary(ctx, conn, p.Config.Path, executorOptions(
				p.Config,
				executor.WithAtomic(cmd.Bool("atomic")),
				executor.WithDryRun(dryRun),
			)...)
			if summary != nil {
				reportSummary(cmd, summary, dryRun, err != nil)
			}

			return err
		},
	}
}

func reportSummary(cmd *cli.Command, summary *executor.Summary, dryRun, failed bool) {
	for _, result := range summary.Results {
		switch result.Status {
		case executor.StatusSuccess:
			fmt.Fprintf(cmd.Root().Writer, "applied %s (%s)\n", result.Filename, result.ExecutionTime.Round(time.Millisecond))
		case executor.StatusPending:
			fmt.Fprintf(cmd.Root().Writer, "pending %s\n", result.Filename)
		case executor.StatusFailed:
			fmt.Fprintf(cmd.Root().Writer, "failed  %s\n", result.Filename)
		}
	}

	switch {
	case dryRun:
		fmt.Fprintf(cmd.Root().Writer, "%d migrations would be applied\n", summary.Pending())
	case failed:
		fmt.Fprintf(cmd.Root().Writer, "%d migrations applied before the failure\n", summary.Applied())
	case summary.Applied() == 0:
		fmt.Fprintln(cmd.Root().Writer, "database is up to date")
	default:
		fmt.Fprintf(cmd.Root().Writer, "%d migrations applied\n", summary.Applied())
	}
}
