package executor

import (
	"context"

	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/parser"
)

// Backend is a target database the executor can migrate.
//
// Execute, FetchOptionalInt64 and the record methods run inside the
// transaction opened by Begin when there is one. Backends that are not
// transactional treat Begin, Commit and Rollback as no-ops.
type Backend interface {
	// Name identifies the engine, e.g. postgres or spark-delta.
	Name() string

	// Dialect is used to parse migration scripts for this backend.
	Dialect() *parser.Dialect

	// Transactional reports whether Begin opens a real transaction.
	Transactional() bool

	// EnsureTable creates the ledger table if it does not exist.
	EnsureTable(ctx context.Context) error

	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Execute runs a single statement verbatim.
	Execute(ctx context.Context, sql string) error

	// FetchOptionalInt64 runs a query returning at most one integer column.
	// The bool is false when there was no row or the value was NULL.
	FetchOptionalInt64(ctx context.Context, sql string) (int64, bool, error)

	// LatestVersion returns the highest applied or tested version.
	LatestVersion(ctx context.Context) (int64, bool, error)

	// AcquireLock takes the ledger lock or returns ledger.ErrLockConflict.
	AcquireLock(ctx context.Context) error
	ReleaseLock(ctx context.Context) error

	// DisableRecords marks every record above version as DISABLED.
	DisableRecords(ctx context.Context, version int64) error

	// UpsertRecord writes a READY record, resetting it if it already exists.
	UpsertRecord(ctx context.Context, rec ledger.Record) error

	// UpdateRecord sets the status of every record of a version.
	UpdateRecord(ctx context.Context, status ledger.Status, version int64) error

	// Snapshot returns a script recreating the current schema.
	Snapshot(ctx context.Context) (string, error)

	Close() error
}
