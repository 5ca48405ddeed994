package postgres

import (
	"context"
	"os/exec"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/stretchr/testify/require"
)

func TestLockError(t *testing.T) {
	conflict := &pgconn.PgError{Code: lockNotAvailable, Message: "could not obtain lock on relation"}
	require.ErrorIs(t, lockError(conflict), ledger.ErrLockConflict)
	require.ErrorIs(t, lockError(errors.Wrap(conflict, "lock")), ledger.ErrLockConflict)

	other := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	require.Same(t, other, lockError(other))
}

func TestSnapshot_MissingPgDump(t *testing.T) {
	b := &Backend{dsn: "postgres://localhost/app", options: Options{PgDump: "pg_dump-does-not-exist"}}

	_, err := b.Snapshot(context.Background())

	var procErr *ledger.ProcessError
	require.ErrorAs(t, err, &procErr)
	require.Equal(t, "pg_dump-does-not-exist --schema-only --no-owner --no-privileges --exclude-schema=swellow", procErr.Cmd)
	require.ErrorIs(t, err, exec.ErrNotFound)
}

func TestSnapshot_FailingPgDump(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}

	b := &Backend{dsn: "postgres://localhost/app", options: Options{PgDump: "false"}}

	_, err := b.Snapshot(context.Background())

	var procErr *ledger.ProcessError
	require.ErrorAs(t, err, &procErr)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.ExitCode())
}
