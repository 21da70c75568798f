package cmd

import (
	"log/slog"

	"github.com/pseudomuto/ssm/pkg/config"
	"github.com/pseudomuto/ssm/pkg/database"
	"github.com/pseudomuto/ssm/pkg/executor"
	"github.com/urfave/cli/v3"
)

// resolveConfig applies the global flags to cfg. An explicitly chosen config
// file replaces cfg before the flags are applied.
func resolveConfig(cmd *cli.Command, cfg *config.Config) error {
	if cmd.IsSet("config") {
		loaded, err := config.LoadConfigFile(cmd.String("config"))
		if err != nil {
			return err
		}

		*cfg = *loaded
	}

	for flag, dst := range map[string]*string{
		"host":      &cfg.Host,
		"path":      &cfg.Path,
		"namespace": &cfg.Namespace,
		"database":  &cfg.Database,
		"username":  &cfg.Username,
		"password":  &cfg.Password,
		"table":     &cfg.Table,
		"ext":       &cfg.Ext,
	} {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}

	if cmd.IsSet("timeout") {
		cfg.Timeout = cmd.Duration("timeout")
	}

	return cfg.Validate()
}

func configureLogging(cmd *cli.Command) {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.Root().ErrWriter, &slog.HandlerOptions{Level: level})))
}

// migrationExt returns the configured extension, or the one the backend
// selected by the host reads.
func migrationExt(cfg *config.Config) (string, error) {
	if cfg.Ext != "" {
		return cfg.Ext, nil
	}

	backend, err := database.BackendFor(cfg.Host)
	if err != nil {
		return "", err
	}

	return backend.Extension(), nil
}

func executorOptions(cfg *config.Config, opts ...executor.Option) []executor.Option {
	opts = append(opts, executor.WithLogger(slog.Default()))
	if cfg.Ext != "" {
		opts = append(opts, executor.WithExtension(cfg.Ext))
	}

	return opts
}
