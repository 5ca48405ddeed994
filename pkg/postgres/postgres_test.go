package postgres_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pseudomuto/swellow/pkg/consts"
	"github.com/pseudomuto/swellow/pkg/docker"
	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/migrator"
	"github.com/pseudomuto/swellow/pkg/postgres"
	"github.com/stretchr/testify/require"
)

var migrations = map[string]string{
	"001_init/up.sql":     "CREATE TABLE users (id BIGSERIAL PRIMARY KEY, email TEXT NOT NULL);\n",
	"001_init/down.sql":   "DROP TABLE users;\n",
	"002_orders/up.sql":   "CREATE TABLE orders (id BIGSERIAL PRIMARY KEY, user_id BIGINT REFERENCES users (id));\nALTER TABLE users ADD COLUMN name TEXT;\n",
	"002_orders/down.sql": "DROP TABLE orders;\nALTER TABLE users DROP COLUMN name;\n",
	"003_fn/up.sql": `CREATE FUNCTION touch() RETURNS trigger AS $$
BEGIN
  NEW.name := coalesce(NEW.name, 'anon; unknown');
  RETURN NEW;
END;
$$ LANGUAGE plpgsql;
`,
	"003_fn/down.sql": "DROP FUNCTION touch();\n",
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

func TestPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}

	docker.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pg := docker.NewPostgres(docker.Options{})
	require.NoError(t, pg.Start(ctx))
	defer func() { _ = pg.Stop(context.Background()) }()

	dsn, err := pg.DSN(ctx)
	require.NoError(t, err)

	open := func(t *testing.T) *postgres.Backend {
		t.Helper()

		b, err := postgres.Open(ctx, dsn, postgres.Options{})
		require.NoError(t, err)
		t.Cleanup(func() { _ = b.Close() })

		return b
	}

	t.Run("migrate up and down", func(t *testing.T) {
		b := open(t)
		exec := executor.New(executor.Config{Backend: b, Dir: writeMigrations(t, migrations)})

		res, err := exec.Migrate(ctx, executor.Options{Direction: migrator.Up})
		require.NoError(t, err)
		require.Equal(t, executor.Committed, res.State)
		require.Len(t, res.Versions, 3)

		latest, ok, err := b.LatestVersion(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(3), latest)

		records, err := b.Records(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, records)
		for _, rec := range records {
			require.Equal(t, ledger.Applied, rec.Status)
		}

		res, err = exec.Migrate(ctx, executor.Options{Direction: migrator.Down})
		require.NoError(t, err)
		require.Len(t, res.Versions, 3)

		_, ok, err = b.LatestVersion(ctx)
		require.NoError(t, err)
		require.False(t, ok)

		_, ok, err = b.FetchOptionalInt64(ctx, "SELECT 1 FROM information_schema.tables WHERE table_name = 'users'")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("table lock conflict", func(t *testing.T) {
		holder := open(t)
		require.NoError(t, holder.EnsureTable(ctx))
		require.NoError(t, holder.Begin(ctx))
		require.NoError(t, holder.AcquireLock(ctx))
		defer func() { _ = holder.Rollback(ctx) }()

		other := open(t)
		require.NoError(t, other.Begin(ctx))
		require.ErrorIs(t, other.AcquireLock(ctx), ledger.ErrLockConflict)
		require.NoError(t, other.Rollback(ctx))
	})

	t.Run("row lock conflict", func(t *testing.T) {
		holder := open(t)
		require.NoError(t, holder.EnsureTable(ctx))
		require.NoError(t, holder.AcquireLock(ctx))

		other := open(t)
		require.ErrorIs(t, other.AcquireLock(ctx), ledger.ErrLockConflict)

		require.NoError(t, other.Begin(ctx))
		require.ErrorIs(t, other.AcquireLock(ctx), ledger.ErrLockConflict)
		require.NoError(t, other.Rollback(ctx))

		require.NoError(t, holder.ReleaseLock(ctx))
		require.NoError(t, other.AcquireLock(ctx))
		require.NoError(t, other.ReleaseLock(ctx))
	})

	t.Run("dry run leaves no trace", func(t *testing.T) {
		b := open(t)
		exec := executor.New(executor.Config{Backend: b, Dir: writeMigrations(t, migrations)})

		res, err := exec.Migrate(ctx, executor.Options{DryRun: true})
		require.NoError(t, err)
		require.Equal(t, executor.RolledBack, res.State)

		_, ok, err := b.LatestVersion(ctx)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("fetch type mismatch", func(t *testing.T) {
		b := open(t)

		_, _, err := b.FetchOptionalInt64(ctx, "SELECT 'nope'::text")

		var mismatch *ledger.ColumnTypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Equal(t, "text", mismatch.Found)
	})
}
