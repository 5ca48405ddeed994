package docker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pseudomuto/swellow/pkg/consts"
	"github.com/pseudomuto/swellow/pkg/docker"
	"github.com/stretchr/testify/require"
)

const clickhouseConfig = `<?xml version="1.0"?>
<clickhouse>
    <logger>
        <level>warning</level>
        <console>true</console>
    </logger>
</clickhouse>`

func TestContainer_NotStarted(t *testing.T) {
	ctx := context.Background()

	for _, c := range []*docker.Container{
		docker.NewPostgres(docker.Options{}),
		docker.NewClickHouse(docker.Options{}),
	} {
		t.Run(string(c.Kind()), func(t *testing.T) {
			require.False(t, c.IsRunning())
			require.NoError(t, c.Stop(ctx))

			_, err := c.DSN(ctx)
			require.EqualError(t, err, "container is not running")
		})
	}
}

func TestPostgresContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}

	docker.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := docker.NewPostgres(docker.Options{})
	require.NoError(t, pg.Start(ctx))
	defer func() { _ = pg.Stop(ctx) }()

	require.True(t, pg.IsRunning())
	require.Error(t, pg.Start(ctx))

	dsn, err := pg.DSN(ctx)
	require.NoError(t, err)
	require.Contains(t, dsn, "postgres://swellow:swellow@")
	require.Contains(t, dsn, "sslmode=disable")

	require.NoError(t, pg.Stop(ctx))
	require.False(t, pg.IsRunning())
}

func TestClickHouseContainer_WithConfigDir(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}

	docker.SkipIfNoDocker(t)

	configDir := filepath.Join(t.TempDir(), "config.d")
	require.NoError(t, os.MkdirAll(configDir, consts.ModeDir))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "logger.xml"), []byte(clickhouseConfig), consts.ModeFile))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ch := docker.NewClickHouse(docker.Options{Version: "25.7", ConfigDir: configDir})
	require.NoError(t, ch.Start(ctx))
	defer func() { _ = ch.Stop(ctx) }()

	dsn, err := ch.DSN(ctx)
	require.NoError(t, err)
	require.Contains(t, dsn, ":", "DSN should contain host:port")
}
