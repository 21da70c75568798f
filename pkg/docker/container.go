package docker

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// EngineSurrealDB runs surrealdb/surrealdb with an in-memory datastore.
	EngineSurrealDB Engine = "surrealdb"

	// EngineClickHouse runs clickhouse/clickhouse-server.
	EngineClickHouse Engine = "clickhouse"

	// DefaultSurrealDBPort is the port SurrealDB serves RPC and HTTP on.
	DefaultSurrealDBPort = 8000

	// DefaultClickHousePort is the default native protocol port for ClickHouse server.
	DefaultClickHousePort = 9000

	// DefaultClickHouseHTTPPort is the default HTTP port for ClickHouse server.
	DefaultClickHouseHTTPPort = 8123

	// DefaultUsername and DefaultPassword are the root credentials of
	// SurrealDB containers.
	DefaultUsername = "root"
	DefaultPassword = "root"

	startupDeadline = 5 * time.Minute
)

type (
	// Engine names a database image the package knows how to run.
	Engine string

	// DockerOptions represents options for running a database in Docker.
	DockerOptions struct {
		// Engine selects the database image (default: EngineSurrealDB).
		Engine Engine

		// Version is the image tag to run (default: latest).
		Version string

		// ConfigDir is an optional ClickHouse config.d directory to mount.
		// Relative paths are resolved against the working directory. Ignored
		// for SurrealDB.
		ConfigDir string
	}

	// Container manages a throwaway database container that migrations can be
	// run against.
	Container struct {
		options    DockerOptions
		container  testcontainers.Container
		clickhouse *clickhouse.ClickHouseContainer
	}
)

// New creates a new SurrealDB container with default options.
//
// Example:
//
//	container := docker.New()
//
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer container.Stop(ctx)
//
//	host, _ := container.GetHost(ctx)
//	// ws://localhost:55012
func New() *Container {
	return &Container{
		options: DockerOptions{Engine: EngineSurrealDB},
	}
}

// NewWithOptions creates a new container with custom options.
//
// Example:
//
//	container := docker.NewWithOptions(docker.DockerOptions{
//		Engine:    docker.EngineClickHouse,
//		Version:   "25.7",
//		ConfigDir: "/path/to/project/db/config.d",
//	})
//
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer container.Stop(ctx)
func NewWithOptions(opts DockerOptions) *Container {
	if opts.Engine == "" {
		opts.Engine = EngineSurrealDB
	}

	return &Container{
		options: opts,
	}
}

// Engine returns the database engine the container runs.
func (c *Container) Engine() Engine {
	return c.options.Engine
}

// Start starts the container and blocks until the database accepts requests.
func (c *Container) Start(ctx context.Context) error {
	if c.container != nil {
		return errors.New("container is already running")
	}

	version := c.options.Version
	if version == "" {
		version = "latest"
	}

	switch c.options.Engine {
	case EngineSurrealDB:
		return c.startSurrealDB(ctx, version)
	case EngineClickHouse:
		return c.startClickHouse(ctx, version)
	default:
		return errors.Errorf("unsupported engine: %s", c.options.Engine)
	}
}

// Stop stops and removes the container.
func (c *Container) Stop(ctx context.Context) error {
	if c.container == nil {
		return nil
	}

	err := c.container.Terminate(ctx)
	c.container = nil
	c.clickhouse = nil

	if err != nil {
		return errors.Wrapf(err, "failed to stop %s container", c.options.Engine)
	}

	return nil
}

// GetHost returns the host URL to pass to ssm for this container.
//
// SurrealDB containers return a ws:// URL. ClickHouse containers return the
// clickhouse:// connection string for the native protocol.
func (c *Container) GetHost(ctx context.Context) (string, error) {
	if c.container == nil {
		return "", errors.New("container is not running")
	}

	if c.clickhouse != nil {
		dsn, err := c.clickhouse.ConnectionString(ctx)
		if err != nil {
			return "", errors.Wrap(err, "failed to get connection string")
		}

		return dsn, nil
	}

	return c.endpoint(ctx, "ws", nat.Port(fmt.Sprintf("%d/tcp", DefaultSurrealDBPort)))
}

// GetHTTPHost returns the HTTP endpoint of the container.
func (c *Container) GetHTTPHost(ctx context.Context) (string, error) {
	if c.container == nil {
		return "", errors.New("container is not running")
	}

	port := DefaultSurrealDBPort
	if c.options.Engine == EngineClickHouse {
		port = DefaultClickHouseHTTPPort
	}

	return c.endpoint(ctx, "http", nat.Port(fmt.Sprintf("%d/tcp", port)))
}

// IsRunning returns true if the container is currently running.
func (c *Container) IsRunning() bool {
	return c.container != nil
}

func (c *Container) endpoint(ctx context.Context, scheme string, port nat.Port) (string, error) {
	host, err := c.container.Host(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get container host")
	}

	mapped, err := c.container.MappedPort(ctx, port)
	if err != nil {
		return "", errors.Wrap(err, "failed to get container port")
	}

	return fmt.Sprintf("%s://%s:%s", scheme, host, mapped.Port()), nil
}

func (c *Container) startSurrealDB(ctx context.Context, version string) error {
	port := nat.Port(fmt.Sprintf("%d/tcp", DefaultSurrealDBPort))

	ctr, err := testcontainers.Run(ctx,
		"surrealdb/surrealdb:"+version,
		testcontainers.WithExposedPorts(string(port)),
		testcontainers.WithCmd("start", "--user", DefaultUsername, "--pass", DefaultPassword, "memory"),
		testcontainers.WithWaitStrategyAndDeadline(
			startupDeadline,
			wait.ForHTTP("/health").WithPort(port),
		),
	)
	if err != nil {
		return errors.Wrap(err, "failed to start SurrealDB container")
	}

	c.container = ctr
	return nil
}

func (c *Container) startClickHouse(ctx context.Context, version string) error {
	customizers := []testcontainers.ContainerCustomizer{
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword(""),
		testcontainers.WithEnv(map[string]string{"CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT": "1"}),
		testcontainers.WithWaitStrategyAndDeadline(
			startupDeadline,
			wait.
				NewHTTPStrategy("/").
				WithPort(nat.Port(fmt.Sprintf("%d/tcp", DefaultClickHouseHTTPPort))).
				WithStatusCodeMatcher(func(status int) bool {
					return status == 200
				}),
		),
	}

	if c.options.ConfigDir != "" {
		absConfigDir, err := filepath.Abs(c.options.ConfigDir)
		if err != nil {
			return errors.Wrapf(err, "failed to get absolute path for ConfigDir: %s", c.options.ConfigDir)
		}

		customizers = append(
			customizers,
			testcontainers.WithHostConfigModifier(func(hostConfig *container.HostConfig) {
				hostConfig.Mounts = []mount.Mount{
					{
						Type:   mount.TypeBind,
						Source: absConfigDir,
						Target: "/etc/clickhouse-server/config.d",
					},
				}
			}),
		)
	}

	ctr, err := clickhouse.Run(ctx,
		fmt.Sprintf("clickhouse/clickhouse-server:%s-alpine", version),
		customizers...,
	)
	if err != nil {
		return errors.Wrap(err, "failed to start ClickHouse container")
	}

	c.container = ctr
	c.clickhouse = ctr
	return nil
}
