package docker

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Kind is the database engine run by a Container.
type Kind string

const (
	Postgres   Kind = "postgres"
	ClickHouse Kind = "clickhouse"
)

type (
	// Options configures a container.
	Options struct {
		// Version is the image tag to run. Defaults to latest for ClickHouse
		// and 16-alpine for PostgreSQL.
		Version string

		// Database, Username and Password default to swellow for PostgreSQL.
		Database string
		Username string
		Password string

		// ConfigDir is mounted as /etc/clickhouse-server/config.d when set.
		ConfigDir string
	}

	// Container is a database server running in Docker.
	Container struct {
		kind    Kind
		options Options
		pg      *postgres.PostgresContainer
		ch      *clickhouse.ClickHouseContainer
	}
)

// NewPostgres returns a PostgreSQL container that has not been started.
func NewPostgres(opts Options) *Container {
	if opts.Database == "" {
		opts.Database = "swellow"
	}

	if opts.Username == "" {
		opts.Username = "swellow"
	}

	if opts.Password == "" {
		opts.Password = "swellow"
	}

	return &Container{kind: Postgres, options: opts}
}

// NewClickHouse returns a ClickHouse container that has not been started.
func NewClickHouse(opts Options) *Container {
	return &Container{kind: ClickHouse, options: opts}
}

// Kind returns the engine the container runs.
func (c *Container) Kind() Kind {
	return c.kind
}

// Start runs the container and waits until it accepts connections.
func (c *Container) Start(ctx context.Context) error {
	if c.IsRunning() {
		return errors.New("container is already running")
	}

	if c.kind == Postgres {
		return c.startPostgres(ctx)
	}

	return c.startClickHouse(ctx)
}

func (c *Container) startPostgres(ctx context.Context) error {
	version := c.options.Version
	if version == "" {
		version = "16-alpine"
	}

	pg, err := postgres.Run(ctx,
		"postgres:"+version,
		postgres.WithDatabase(c.options.Database),
		postgres.WithUsername(c.options.Username),
		postgres.WithPassword(c.options.Password),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to start PostgreSQL container")
	}

	c.pg = pg
	return nil
}

func (c *Container) startClickHouse(ctx context.Context) error {
	version := c.options.Version
	if version == "" {
		version = "latest"
	}

	customizers := []testcontainers.ContainerCustomizer{
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword(""),
		testcontainers.WithEnv(map[string]string{"CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT": "1"}),
		testcontainers.WithWaitStrategyAndDeadline(
			5*time.Minute,
			wait.
				NewHTTPStrategy("/").
				WithPort(nat.Port("8123/tcp")).
				WithStatusCodeMatcher(func(status int) bool {
					return status == 200
				}),
		),
	}

	if c.options.ConfigDir != "" {
		abs, err := filepath.Abs(c.options.ConfigDir)
		if err != nil {
			return errors.Wrapf(err, "failed to get absolute path for ConfigDir: %s", c.options.ConfigDir)
		}

		customizers = append(
			customizers,
			testcontainers.WithHostConfigModifier(func(hostConfig *container.HostConfig) {
				hostConfig.Mounts = []mount.Mount{
					{
						Type:   mount.TypeBind,
						Source: abs,
						Target: "/etc/clickhouse-server/config.d",
					},
				}
			}),
		)
	}

	ch, err := clickhouse.Run(ctx, fmt.Sprintf("clickhouse/clickhouse-server:%s-alpine", version), customizers...)
	if err != nil {
		return errors.Wrap(err, "failed to start ClickHouse container")
	}

	c.ch = ch
	return nil
}

// Stop terminates the container. Stopping a container that is not running is
// a no-op.
func (c *Container) Stop(ctx context.Context) error {
	var err error
	switch {
	case c.pg != nil:
		err = c.pg.Terminate(ctx)
	case c.ch != nil:
		err = c.ch.Terminate(ctx)
	default:
		return nil
	}

	c.pg, c.ch = nil, nil
	if err != nil {
		return errors.Wrapf(err, "failed to stop %s container", c.kind)
	}

	return nil
}

// DSN returns the connection string of the running server.
func (c *Container) DSN(ctx context.Context) (string, error) {
	var (
		dsn string
		err error
	)

	switch {
	case c.pg != nil:
		dsn, err = c.pg.ConnectionString(ctx, "sslmode=disable")
	case c.ch != nil:
		dsn, err = c.ch.ConnectionString(ctx)
	default:
		return "", errors.New("container is not running")
	}

	if err != nil {
		return "", errors.Wrap(err, "failed to get connection string")
	}

	return dsn, nil
}

// IsRunning reports whether the container has been started and not stopped.
func (c *Container) IsRunning() bool {
	return c.pg != nil || c.ch != nil
}

// SkipIfNoDocker skips the test when the docker CLI or daemon is unavailable.
func SkipIfNoDocker(t testing.TB) {
	t.Helper()

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	if err := exec.Command("docker", "ps").Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}
