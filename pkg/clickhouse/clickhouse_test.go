package clickhouse_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pseudomuto/swellow/pkg/clickhouse"
	"github.com/pseudomuto/swellow/pkg/consts"
	"github.com/pseudomuto/swellow/pkg/docker"
	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/migrator"
	"github.com/stretchr/testify/require"
)

var migrations = map[string]string{
	"001_db/up.sql":       "CREATE DATABASE analytics;\n",
	"001_db/down.sql":     "DROP DATABASE analytics;\n",
	"002_events/up.sql":   "CREATE TABLE analytics.events (id UInt64, kind String) ENGINE = MergeTree ORDER BY id;\nCREATE TABLE analytics.totals (kind String, n UInt64) ENGINE = SummingMergeTree ORDER BY kind;\n",
	"002_events/down.sql": "DROP TABLE analytics.totals;\nDROP TABLE analytics.events;\n",
	"003_mv/up.sql":       "CREATE MATERIALIZED VIEW analytics.totals_mv TO analytics.totals AS SELECT kind, count() AS n FROM analytics.events GROUP BY kind;\n",
	"003_mv/down.sql":     "DROP VIEW analytics.totals_mv;\n",
	"004_rename/up.sql":   "RENAME TABLE analytics.events TO analytics.raw_events;\n",
	"004_rename/down.sql": "RENAME TABLE analytics.raw_events TO analytics.events;\n",
}

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), consts.ModeDir))
		require.NoError(t, os.WriteFile(path, []byte(content), consts.ModeFile))
	}

	return dir
}

func TestClickHouse(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}

	docker.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ch := docker.NewClickHouse(docker.Options{Version: "25.7"})
	require.NoError(t, ch.Start(ctx))
	defer func() { _ = ch.Stop(context.Background()) }()

	dsn, err := ch.DSN(ctx)
	require.NoError(t, err)

	backend, err := clickhouse.Open(ctx, dsn, clickhouse.ClientOptions{})
	require.NoError(t, err)
	defer func() { _ = backend.Close() }()

	dir := writeMigrations(t, migrations)
	exec := executor.New(executor.Config{Backend: backend, Dir: dir})

	t.Run("dry run is rejected", func(t *testing.T) {
		_, err := exec.Migrate(ctx, executor.Options{DryRun: true})

		var unsupported *executor.DryRunUnsupportedError
		require.ErrorAs(t, err, &unsupported)
		require.Equal(t, "clickhouse", unsupported.Engine)
	})

	t.Run("apply", func(t *testing.T) {
		res, err := exec.Migrate(ctx, executor.Options{Direction: migrator.Up})
		require.NoError(t, err)
		require.Equal(t, executor.Committed, res.State)
		require.Len(t, res.Versions, 4)

		latest, ok, err := backend.LatestVersion(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(4), latest)

		records, err := backend.Records(ctx)
		require.NoError(t, err)

		var renamed bool
		for _, rec := range records {
			require.Equal(t, ledger.Applied, rec.Status)
			if rec.NameBefore == "analytics.events" && rec.NameAfter == "analytics.raw_events" {
				renamed = true
			}
		}
		require.True(t, renamed)

		// The lock is released after the run.
		_, held, err := backend.FetchOptionalInt64(ctx, ledger.Queries{Table: clickhouse.Table + " FINAL"}.LockExists())
		require.NoError(t, err)
		require.False(t, held)
	})

	t.Run("snapshot", func(t *testing.T) {
		script, err := backend.Snapshot(ctx)
		require.NoError(t, err)
		require.Contains(t, script, "CREATE DATABASE IF NOT EXISTS `analytics`;")
		require.Contains(t, script, "CREATE TABLE analytics.raw_events")
		require.NotContains(t, script, clickhouse.Table)

		tables := strings.Index(script, "CREATE TABLE analytics.totals")
		views := strings.Index(script, "CREATE MATERIALIZED VIEW analytics.totals_mv")
		require.Positive(t, tables)
		require.Greater(t, views, tables)
	})

	t.Run("lock conflict", func(t *testing.T) {
		require.NoError(t, backend.AcquireLock(ctx))
		require.ErrorIs(t, backend.AcquireLock(ctx), ledger.ErrLockConflict)

		_, err := exec.Migrate(ctx, executor.Options{Direction: migrator.Down})
		require.ErrorIs(t, err, ledger.ErrLockConflict)

		require.NoError(t, backend.ReleaseLock(ctx))
	})

	t.Run("roll back", func(t *testing.T) {
		res, err := exec.Migrate(ctx, executor.Options{Direction: migrator.Down, TargetVersion: ptr(1)})
		require.NoError(t, err)
		require.Len(t, res.Versions, 3)

		latest, ok, err := backend.LatestVersion(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(1), latest)

		_, ok, err = backend.FetchOptionalInt64(ctx, "SELECT 1 FROM system.tables WHERE database = 'analytics' LIMIT 1")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, _, err := backend.FetchOptionalInt64(ctx, "SELECT 'x'")

		var mismatch *ledger.ColumnTypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Equal(t, "String", mismatch.Found)
	})
}

func ptr(v int64) *int64 {
	return &v
}
