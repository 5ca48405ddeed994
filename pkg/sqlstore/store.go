package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/parser"
)

type (
	// Querier is satisfied by both *sql.DB and *sql.Tx.
	Querier interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	}

	// Flavor describes how a database/sql engine keeps its ledger.
	Flavor struct {
		// Name is the engine name reported to users.
		Name string

		// Dialect parses migration scripts for the engine.
		Dialect *parser.Dialect

		// Transactional reports whether the engine supports transactions.
		Transactional bool

		// Setup creates the records table. Every statement must be idempotent.
		Setup []string

		// Queries renders the ledger statements.
		Queries ledger.Queries

		// Merge upserts records with MERGE INTO instead of ON CONFLICT.
		Merge bool

		// AtomicLock inserts the lock row with ON CONFLICT DO NOTHING and
		// treats zero affected rows as a conflict.
		AtomicLock bool

		// Snapshot dumps the schema. Nil means the engine cannot snapshot.
		Snapshot func(ctx context.Context, q Querier) (string, error)
	}

	// Store is a ledger backend over database/sql.
	Store struct {
		db     *sql.DB
		flavor Flavor
		tx     *sql.Tx
	}
)

// New returns a Store using an already opened database.
func New(db *sql.DB, flavor Flavor) *Store {
	return &Store{db: db, flavor: flavor}
}

// Open opens a database with the named driver and verifies the connection.
func Open(ctx context.Context, driver, dsn string, flavor Flavor) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s connection", flavor.Name)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s", flavor.Name)
	}

	return New(db, flavor), nil
}

func (s *Store) Name() string             { return s.flavor.Name }
func (s *Store) Dialect() *parser.Dialect { return s.flavor.Dialect }
func (s *Store) Transactional() bool      { return s.flavor.Transactional }

// DB returns the underlying database.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) q() Querier {
	if s.tx != nil {
		return s.tx
	}

	return s.db
}

// EnsureTable runs the flavor's setup statements outside any transaction.
func (s *Store) EnsureTable(ctx context.Context) error {
	for _, stmt := range s.flavor.Setup {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create records table")
		}
	}

	return nil
}

func (s *Store) Begin(ctx context.Context) error {
	if !s.flavor.Transactional || s.tx != nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	s.tx = tx
	return nil
}

func (s *Store) Commit(context.Context) error {
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil
	return tx.Commit()
}

func (s *Store) Rollback(context.Context) error {
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil
	return tx.Rollback()
}

func (s *Store) Execute(ctx context.Context, query string) error {
	_, err := s.q().ExecContext(ctx, query)
	return err
}

// FetchOptionalInt64 returns the first column of the first row. Integer
// columns of any width are accepted, anything else is a
// ledger.ColumnTypeMismatchError.
func (s *Store) FetchOptionalInt64(ctx context.Context, query string) (int64, bool, error) {
	rows, err := s.q().QueryContext(ctx, query)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return 0, false, rows.Err()
	}

	var v any
	if err := rows.Scan(&v); err != nil {
		return 0, false, err
	}

	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return n, true, nil
	case int32:
		return int64(n), true, nil
	case int16:
		return int64(n), true, nil
	case int8:
		return int64(n), true, nil
	case int:
		return int64(n), true, nil
	default:
		return 0, false, &ledger.ColumnTypeMismatchError{Column: 0, Expected: "integer", Found: fmt.Sprintf("%T", v)}
	}
}

func (s *Store) LatestVersion(ctx context.Context) (int64, bool, error) {
	return s.FetchOptionalInt64(ctx, s.flavor.Queries.LatestVersion())
}

// AcquireLock inserts the sentinel row, failing with ledger.ErrLockConflict
// when it is already present.
func (s *Store) AcquireLock(ctx context.Context) error {
	if _, held, err := s.FetchOptionalInt64(ctx, s.flavor.Queries.LockExists()); err != nil {
		return errors.Wrap(err, "failed to check for lock")
	} else if held {
		return ledger.ErrLockConflict
	}

	if !s.flavor.AtomicLock {
		return s.Execute(ctx, s.flavor.Queries.InsertLock())
	}

	res, err := s.q().ExecContext(ctx, s.flavor.Queries.InsertLockIfAbsent())
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledger.ErrLockConflict
	}

	return nil
}

func (s *Store) ReleaseLock(ctx context.Context) error {
	return s.Execute(ctx, s.flavor.Queries.DeleteLock())
}

func (s *Store) DisableRecords(ctx context.Context, version int64) error {
	_, err := s.q().ExecContext(ctx, s.flavor.Queries.Disable(), version)
	return err
}

func (s *Store) UpsertRecord(ctx context.Context, rec ledger.Record) error {
	query := s.flavor.Queries.Upsert()
	if s.flavor.Merge {
		query = s.flavor.Queries.Merge()
	}

	_, err := s.q().ExecContext(ctx, query, rec.ObjectType, rec.NameBefore, rec.NameAfter, rec.VersionID, rec.Checksum)
	return err
}

func (s *Store) UpdateRecord(ctx context.Context, status ledger.Status, version int64) error {
	_, err := s.q().ExecContext(ctx, s.flavor.Queries.Update(), string(status), version)
	return err
}

// Records returns every ledger row except the lock sentinel.
func (s *Store) Records(ctx context.Context) ([]ledger.Record, error) {
	rows, err := s.q().QueryContext(ctx, s.flavor.Queries.Records())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ledger.Record
	for rows.Next() {
		var (
			rec    ledger.Record
			status string
		)

		if err := rows.Scan(&rec.VersionID, &rec.ObjectType, &rec.NameBefore, &rec.NameAfter, &status, &rec.Checksum); err != nil {
			return nil, err
		}

		rec.Status = ledger.Status(status)
		out = append(out, rec)
	}

	return out, rows.Err()
}

func (s *Store) Snapshot(ctx context.Context) (string, error) {
	if s.flavor.Snapshot == nil {
		return "", errors.Errorf("snapshot is not supported by the %s engine", s.flavor.Name)
	}

	return s.flavor.Snapshot(ctx, s.q())
}

func (s *Store) Close() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}

	return s.db.Close()
}
