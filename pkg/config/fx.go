package config

import (
	"os"

	"github.com/pseudomuto/ssm/pkg/consts"
	"go.uber.org/fx"
)

// EnvConfigFile names the environment variable that overrides the location of
// the configuration file.
const EnvConfigFile = "SSM_CONFIG"

var Module = fx.Module("config", fx.Provide(
	// Loads ssm.yaml (or $SSM_CONFIG) when it exists. Without a file the
	// defaults are used, so the CLI works with flags and environment alone.
	func() (*Config, error) {
		path := consts.DefaultConfigFile
		if env := os.Getenv(EnvConfigFile); env != "" {
			path = env
		}

		return LoadOptionalConfigFile(path)
	},
))
