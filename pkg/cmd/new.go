package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/consts"
	"github.com/pseudomuto/ssm/pkg/migrator"
	"github.com/urfave/cli/v3"
)

// newCmd creates the new command, which writes an empty migration file with
// the next version. The version is zero padded to the width of the newest
// existing file.
//
// Example usage:
//
//	ssm -p ./migrations new "add users table"
//	# created migrations/004_add_users_table.surql
func newCmd(p commandParams) *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create the next migration file",
		ArgsUsage: "<label>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			label := cmd.Args().First()
			if label == "" {
				return errors.New("a label is required, e.g. ssm new create_users")
			}

			ext, err := migrationExt(p.Config)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(p.Config.Path, consts.ModeDir); err != nil {
				return errors.Wrapf(err, "failed to create migration directory: %s", p.Config.Path)
			}

			dir, err := migrator.LoadMigrationDirPath(p.Config.Path, ext)
			if err != nil {
				return err
			}

			name := migrator.FormatFilename(dir.NextVersion(), dir.VersionWidth(), label, ext)
			path := filepath.Join(p.Config.Path, name)

			f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, consts.ModeFile)
			if err != nil {
				return errors.Wrapf(err, "failed to create migration file: %s", path)
			}
			defer func() { _ = f.Close() }()

			if _, err := fmt.Fprintf(f, "-- %s\n", label); err != nil {
				return errors.Wrapf(err, "failed to write migration file: %s", path)
			}

			fmt.Fprintf(cmd.Root().Writer, "created %s\n", path)
			return nil
		},
	}
}
