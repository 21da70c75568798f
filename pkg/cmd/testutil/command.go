package testutil

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/ssm/pkg/consts"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// RunApp executes app with args, prefixed by the program name, and returns
// what the command wrote to its standard output.
func RunApp(t *testing.T, app *cli.Command, args ...string) (string, error) {
	t.Helper()
	return RunAppWithContext(context.Background(), t, app, args...)
}

// RunAppWithContext executes app with a custom context
func RunAppWithContext(ctx context.Context, t *testing.T, app *cli.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(ctx, append([]string{app.Name}, args...))
	return out.String(), err
}

// RunCommand executes a single command wrapped in a test app
func RunCommand(t *testing.T, command *cli.Command, args []string) (string, error) {
	t.Helper()

	app := &cli.Command{
		Name:     "test",
		Commands: []*cli.Command{command},
	}

	return RunApp(t, app, append([]string{command.Name}, args...)...)
}

// WriteMigrations creates a temporary directory holding files and returns
// its path.
func WriteMigrations(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), consts.ModeFile))
	}

	return dir
}

// SQLiteHost returns a host URL for a fresh SQLite database file.
func SQLiteHost(t *testing.T) string {
	t.Helper()
	return "sqlite://" + filepath.Join(t.TempDir(), "ssm.db")
}
