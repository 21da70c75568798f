package main

import (
	"context"
	"os"

	"github.com/pseudomuto/ssm/pkg/cmd"
	"github.com/pseudomuto/ssm/pkg/config"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	fx.New(
		fx.Supply(os.Args),
		fx.Provide(
			context.Background,
			func() *cmd.Version {
				return &cmd.Version{
					Version:   version,
					Commit:    commit,
					Timestamp: date,
				}
			},
		),
		config.Module,
		cmd.Module,
		fx.NopLogger,
	).Run()
}
