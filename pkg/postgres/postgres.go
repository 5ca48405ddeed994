package postgres

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/parser"
)

// Table is the records table.
const Table = ledger.Schema + ".records"

// lockNotAvailable is the SQLSTATE raised by LOCK TABLE ... NOWAIT when the
// table is held by another session.
const lockNotAvailable = "55P03"

var setup = []string{
	"CREATE SCHEMA IF NOT EXISTS " + ledger.Schema,
	`CREATE TABLE IF NOT EXISTS ` + Table + ` (
    version_id BIGINT NOT NULL,
    object_type TEXT NOT NULL,
    object_name_before TEXT NOT NULL,
    object_name_after TEXT NOT NULL,
    status TEXT NOT NULL,
    checksum TEXT NOT NULL,
    dtm_created_at TIMESTAMP DEFAULT now(),
    dtm_updated_at TIMESTAMP DEFAULT now(),
    PRIMARY KEY (version_id, object_type, object_name_before, object_name_after)
)`,
}

var queries = ledger.Queries{Table: Table, Placeholder: ledger.Dollar, Now: "now()"}

type (
	// Options configures the backend.
	Options struct {
		// PgDump is the pg_dump executable used by Snapshot. Defaults to
		// pg_dump on PATH.
		PgDump string

		// MaxConns caps the pool size when positive.
		MaxConns int32
	}

	querier interface {
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	}

	// Backend migrates a PostgreSQL database.
	Backend struct {
		pool    *pgxpool.Pool
		dsn     string
		options Options
		tx      pgx.Tx

		// rowLock is set when the lock is held by the sentinel row rather
		// than by LOCK TABLE.
		rowLock bool
	}
)

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string, opts Options) (*Backend, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse postgres connection string")
	}

	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	if opts.PgDump == "" {
		opts.PgDump = "pg_dump"
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create postgres pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}

	return &Backend{pool: pool, dsn: dsn, options: opts}, nil
}

func (b *Backend) Name() string             { return "postgres" }
func (b *Backend) Dialect() *parser.Dialect { return parser.Postgres }
func (b *Backend) Transactional() bool      { return true }

func (b *Backend) q() querier {
	if b.tx != nil {
		return b.tx
	}

	return b.pool
}

// EnsureTable creates the swellow schema and records table.
func (b *Backend) EnsureTable(ctx context.Context) error {
	for _, stmt := range setup {
		if _, err := b.pool.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create records table")
		}
	}

	return nil
}

func (b *Backend) Begin(ctx context.Context) error {
	if b.tx != nil {
		return nil
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return err
	}

	b.tx = tx
	return nil
}

func (b *Backend) Commit(ctx context.Context) error {
	if b.tx == nil {
		return nil
	}

	tx := b.tx
	b.tx = nil
	return tx.Commit(ctx)
}

func (b *Backend) Rollback(ctx context.Context) error {
	if b.tx == nil {
		return nil
	}

	tx := b.tx
	b.tx = nil
	return tx.Rollback(ctx)
}

// Execute runs a script statement. Statements are sent with the simple
// protocol so utility commands and multi-statement bodies are accepted.
func (b *Backend) Execute(ctx context.Context, sql string) error {
	_, err := b.q().Exec(ctx, sql, pgx.QueryExecModeSimpleProtocol)
	return err
}

// FetchOptionalInt64 returns the first column of the first row. NULL and no
// rows both report false.
func (b *Backend) FetchOptionalInt64(ctx context.Context, sql string) (int64, bool, error) {
	rows, err := b.q().Query(ctx, sql)
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, false, rows.Err()
	}

	values, err := rows.Values()
	if err != nil {
		return 0, false, err
	}

	if len(values) == 0 {
		return 0, false, &ledger.ColumnTypeMismatchError{Column: 0, Expected: "int8", Found: "no columns"}
	}

	switch n := values[0].(type) {
	case nil:
		return 0, false, nil
	case int64:
		return n, true, nil
	case int32:
		return int64(n), true, nil
	case int16:
		return int64(n), true, nil
	default:
		found := fmt.Sprintf("%T", n)
		if fields := rows.FieldDescriptions(); len(fields) > 0 {
			if t, ok := pgtype.NewMap().TypeForOID(fields[0].DataTypeOID); ok {
				found = t.Name
			}
		}

		return 0, false, &ledger.ColumnTypeMismatchError{Column: 0, Expected: "int8", Found: found}
	}
}

func (b *Backend) LatestVersion(ctx context.Context) (int64, bool, error) {
	return b.FetchOptionalInt64(ctx, queries.LatestVersion())
}

// AcquireLock locks the records table when a transaction is open and inserts
// the sentinel row otherwise.
func (b *Backend) AcquireLock(ctx context.Context) error {
	if b.tx != nil {
		if _, err := b.tx.Exec(ctx, "LOCK TABLE "+Table+" IN ACCESS EXCLUSIVE MODE NOWAIT"); err != nil {
			return lockError(err)
		}

		// A run without a transaction may hold the row lock.
		if _, held, err := b.FetchOptionalInt64(ctx, queries.LockExists()); err != nil {
			return errors.Wrap(err, "failed to check for lock")
		} else if held {
			return ledger.ErrLockConflict
		}

		return nil
	}

	if _, held, err := b.FetchOptionalInt64(ctx, queries.LockExists()); err != nil {
		return errors.Wrap(err, "failed to check for lock")
	} else if held {
		return ledger.ErrLockConflict
	}

	tag, err := b.pool.Exec(ctx, queries.InsertLockIfAbsent())
	if err != nil {
		return lockError(err)
	}

	if tag.RowsAffected() == 0 {
		return ledger.ErrLockConflict
	}

	b.rowLock = true
	return nil
}

// ReleaseLock deletes the sentinel row. Table locks end with the transaction.
func (b *Backend) ReleaseLock(ctx context.Context) error {
	if !b.rowLock {
		return nil
	}

	if _, err := b.pool.Exec(ctx, queries.DeleteLock()); err != nil {
		return err
	}

	b.rowLock = false
	return nil
}

func (b *Backend) DisableRecords(ctx context.Context, version int64) error {
	_, err := b.q().Exec(ctx, queries.Disable(), version)
	return err
}

func (b *Backend) UpsertRecord(ctx context.Context, rec ledger.Record) error {
	_, err := b.q().Exec(ctx, queries.Upsert(), rec.ObjectType, rec.NameBefore, rec.NameAfter, rec.VersionID, rec.Checksum)
	return err
}

func (b *Backend) UpdateRecord(ctx context.Context, status ledger.Status, version int64) error {
	_, err := b.q().Exec(ctx, queries.Update(), string(status), version)
	return err
}

// Records returns every ledger row except the lock sentinel.
func (b *Backend) Records(ctx context.Context) ([]ledger.Record, error) {
	rows, err := b.q().Query(ctx, queries.Records())
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ledger.Record, error) {
		var (
			rec    ledger.Record
			status string
		)

		err := row.Scan(&rec.VersionID, &rec.ObjectType, &rec.NameBefore, &rec.NameAfter, &status, &rec.Checksum)
		rec.Status = ledger.Status(status)
		return rec, err
	})
}

// Snapshot returns the schema-only pg_dump of the database, excluding the
// swellow schema.
func (b *Backend) Snapshot(ctx context.Context) (string, error) {
	args := []string{"--schema-only", "--no-owner", "--no-privileges", "--exclude-schema=" + ledger.Schema}
	display := b.options.PgDump + " " + strings.Join(args, " ")

	bin, err := exec.LookPath(b.options.PgDump)
	if err != nil {
		return "", &ledger.ProcessError{Cmd: display, Err: err}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, append(args, b.dsn)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ledger.ProcessError{Cmd: display, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}

	return stdout.String(), nil
}

func (b *Backend) Close() error {
	if b.tx != nil {
		_ = b.tx.Rollback(context.Background())
		b.tx = nil
	}

	b.pool.Close()
	return nil
}

func lockError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable {
		return ledger.ErrLockConflict
	}

	return err
}
