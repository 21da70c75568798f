package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pseudomuto/ssm/pkg/config"
	"github.com/pseudomuto/ssm/pkg/consts"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Config     *config.Config
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}

	commandParams struct {
		fx.In

		Config *config.Config
	}
)

// Run builds the ssm CLI and executes it with the process arguments once the
// fx application starts. The application shuts down with exit code 1 when
// the command fails and 0 otherwise.
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := NewApp(p.Version, p.Config, p.Commands...)

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			return
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

// NewApp creates the root ssm command.
//
// Global flags may appear before or after the subcommand. Before any
// subcommand runs, the flags and their environment variables are applied on
// top of cfg, so precedence is flag, then environment, then config file, then
// the built-in defaults. cfg is updated in place and shared with commands.
//
// Example usage:
//
//	cfg := config.Defaults()
//	app := cmd.NewApp(&cmd.Version{Version: "dev"}, cfg, cmd.Commands(cfg)...)
//
//	// ssm -H sqlite://./dev.db -p ./migrations apply
//	err := app.Run(ctx, []string{"ssm", "-H", "sqlite://./dev.db", "-p", "./migrations", "apply"})
func NewApp(version *Version, cfg *config.Config, commands ...*cli.Command) *cli.Command {
	var cancel context.CancelFunc

	return &cli.Command{
		Name:  "ssm",
		Usage: "Apply versioned migrations to SurrealDB, SQLite or ClickHouse",
		Description: `ssm applies numbered migration files to a database in version order and
records each applied version in a ledger table inside that database. Running
apply again only executes files that are not yet in the ledger.

Migration files are named <version>[_<label>].<ext>, e.g. 001_create_users.surql.
The host URL scheme selects the database: ws, wss, http and https connect to
SurrealDB, sqlite and file open a SQLite database, and clickhouse and tcp
connect to ClickHouse.`,
		Version:  version.Version,
		Flags:    globalFlags(),
		Commands: commands,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := resolveConfig(cmd, cfg); err != nil {
				return ctx, err
			}

			configureLogging(cmd)

			if cfg.Timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			}

			return ctx, nil
		},
		After: func(context.Context, *cli.Command) error {
			if cancel != nil {
				cancel()
			}

			return nil
		},
	}
}

// Commands returns every ssm subcommand bound to cfg.
func Commands(cfg *config.Config) []*cli.Command {
	p := commandParams{Config: cfg}
	return []*cli.Command{apply(p), reset(p), status(p), newCmd(p)}
}

func globalFlags() []cli.Flag {
	trim := cli.StringConfig{TrimSpace: true}

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Aliases: []string{"H"},
			Usage:   "the database URL, its scheme selects the backend",
			Value:   consts.DefaultHost,
			Sources: cli.EnvVars("SSM_HOST"),
			Config:  trim,
		},
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"p"},
			Usage:   "the directory containing migration files",
			Value:   consts.DefaultPath,
			Sources: cli.EnvVars("SSM_PATH"),
			Config:  trim,
		},
		&cli.StringFlag{
			Name:    "namespace",
			Aliases: []string{"n"},
			Usage:   "the SurrealDB namespace",
			Value:   consts.DefaultNamespace,
			Sources: cli.EnvVars("SSM_NAMESPACE"),
			Config:  trim,
		},
		&cli.StringFlag{
			Name:    "database",
			Aliases: []string{"d"},
			Usage:   "the database to migrate",
			Value:   consts.DefaultDatabase,
			Sources: cli.EnvVars("SSM_DB_NAME", "SSM_DATABASE"),
			Config:  trim,
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"U"},
			Usage:   "the user to sign in as, sign in is skipped when empty",
			Sources: cli.EnvVars("SSM_USERNAME"),
			Config:  trim,
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"P"},
			Usage:   "the password for --username",
			Sources: cli.EnvVars("SSM_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    "table",
			Usage:   "the ledger table name",
			Value:   consts.DefaultLedgerTable,
			Sources: cli.EnvVars("SSM_TABLE"),
			Config:  trim,
		},
		&cli.StringFlag{
			Name:        "ext",
			Usage:       "the migration file extension",
			DefaultText: ".surql for SurrealDB, .sql otherwise",
			Sources:     cli.EnvVars("SSM_EXT"),
			Config:      trim,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "the ssm config file",
			Value:   consts.DefaultConfigFile,
			Sources: cli.EnvVars(config.EnvConfigFile),
			Config:  trim,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "abort the run after this long",
			DefaultText: "no timeout",
			Sources:     cli.EnvVars("SSM_TIMEOUT"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "enable debug logging",
			Sources: cli.EnvVars("SSM_VERBOSE"),
		},
	}
}
