package docker_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/pseudomuto/ssm/pkg/consts"
	"github.com/pseudomuto/ssm/pkg/docker"
	"github.com/stretchr/testify/require"
)

// skipIfNoDocker skips the test if Docker is not available
func skipIfNoDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	if err := exec.Command("docker", "ps").Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}

func TestNewWithOptions_DefaultsEngine(t *testing.T) {
	require.Equal(t, docker.EngineSurrealDB, docker.New().Engine())
	require.Equal(t, docker.EngineSurrealDB, docker.NewWithOptions(docker.DockerOptions{}).Engine())
	require.Equal(t, docker.EngineClickHouse, docker.NewWithOptions(docker.DockerOptions{
		Engine: docker.EngineClickHouse,
	}).Engine())
}

func TestContainer_NotRunning(t *testing.T) {
	ctx := context.Background()
	container := docker.New()

	require.False(t, container.IsRunning())
	require.NoError(t, container.Stop(ctx))

	_, err := container.GetHost(ctx)
	require.EqualError(t, err, "container is not running")

	_, err = container.GetHTTPHost(ctx)
	require.EqualError(t, err, "container is not running")
}

func TestContainer_UnsupportedEngine(t *testing.T) {
	container := docker.NewWithOptions(docker.DockerOptions{Engine: "postgres"})
	require.EqualError(t, container.Start(context.Background()), "unsupported engine: postgres")
	require.False(t, container.IsRunning())
}

func TestContainer_SurrealDB(t *testing.T) {
	skipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container := docker.New()
	defer func() { _ = container.Stop(ctx) }()

	require.NoError(t, container.Start(ctx))
	require.True(t, container.IsRunning())
	require.Error(t, container.Start(ctx), "starting twice should fail")

	host, err := container.GetHost(ctx)
	require.NoError(t, err)
	require.Contains(t, host, "ws://")

	httpHost, err := container.GetHTTPHost(ctx)
	require.NoError(t, err)
	require.Contains(t, httpHost, "http://")

	require.NoError(t, container.Stop(ctx))
	require.False(t, container.IsRunning())
}

func TestContainer_ClickHouseWithConfigDir(t *testing.T) {
	skipIfNoDocker(t)

	configDir := filepath.Join(t.TempDir(), "config.d")
	require.NoError(t, os.MkdirAll(configDir, consts.ModeDir))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.xml"), []byte(`<?xml version="1.0"?>
<clickhouse>
    <logger>
        <level>warning</level>
        <console>true</console>
    </logger>
</clickhouse>`), consts.ModeFile))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container := docker.NewWithOptions(docker.DockerOptions{
		Engine:    docker.EngineClickHouse,
		Version:   "25.7",
		ConfigDir: configDir,
	})
	defer func() { _ = container.Stop(ctx) }()

	require.NoError(t, container.Start(ctx))

	host, err := container.GetHost(ctx)
	require.NoError(t, err)
	require.Contains(t, host, "clickhouse://")

	httpHost, err := container.GetHTTPHost(ctx)
	require.NoError(t, err)
	require.Contains(t, httpHost, "http://")
}
