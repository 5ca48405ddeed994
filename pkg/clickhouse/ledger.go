package clickhouse

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/ledger"
)

// Table is the records table.
const Table = ledger.Schema + ".records"

const createTable = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
    version_id Int64,
    object_type String,
    object_name_before String,
    object_name_after String,
    status String,
    checksum String,
    dtm_created_at DateTime64(3) DEFAULT now64(3),
    dtm_updated_at DateTime64(3) DEFAULT now64(3)
)
ENGINE = ReplacingMergeTree(dtm_updated_at)
ORDER BY (version_id, object_type, object_name_before, object_name_after)`

const columns = "version_id, object_type, object_name_before, object_name_after, status, checksum, dtm_created_at, dtm_updated_at"

var (
	// reads see the merged state of the table.
	reads  = ledger.Queries{Table: Table + " FINAL", Now: "now64(3)"}
	writes = ledger.Queries{Table: Table, Now: "now64(3)"}
)

// latestVersion uses maxOrNull since max over no rows is 0 in ClickHouse.
var latestVersion = fmt.Sprintf(
	"SELECT maxOrNull(version_id) AS version_id FROM %s FINAL WHERE status IN ('%s', '%s')",
	Table,
	ledger.Applied,
	ledger.Tested,
)

// transition rewrites the latest row of every matching record with a new
// status. Binds: the values of where.
func transition(status, where string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT version_id, object_type, object_name_before, object_name_after, %s, checksum, dtm_created_at, now64(3) "+
			"FROM %s FINAL WHERE %s AND object_type <> '%s'",
		Table,
		columns,
		status,
		Table,
		where,
		ledger.LockName,
	)
}

// EnsureTable creates the swellow database and records table and records the
// server version.
func (b *Backend) EnsureTable(ctx context.Context) error {
	for _, stmt := range []string{"CREATE DATABASE IF NOT EXISTS " + ledger.Schema, createTable} {
		if err := b.conn.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create records table")
		}
	}

	server, err := b.queryRelease(ctx)
	if err != nil {
		return err
	}

	b.server = server
	return nil
}

func (b *Backend) LatestVersion(ctx context.Context) (int64, bool, error) {
	return b.FetchOptionalInt64(ctx, latestVersion)
}

// AcquireLock inserts the sentinel row unless it is already present.
//
// ClickHouse cannot insert conditionally, so two runs checking at the same
// moment can both succeed.
func (b *Backend) AcquireLock(ctx context.Context) error {
	if _, held, err := b.FetchOptionalInt64(ctx, reads.LockExists()); err != nil {
		return errors.Wrap(err, "failed to check for lock")
	} else if held {
		return ledger.ErrLockConflict
	}

	return b.conn.Exec(ctx, writes.InsertLock())
}

// ReleaseLock removes the sentinel row.
func (b *Backend) ReleaseLock(ctx context.Context) error {
	if b.server == nil {
		server, err := b.queryRelease(ctx)
		if err != nil {
			return err
		}

		b.server = server
	}

	return b.conn.Exec(ctx, b.deleteLock())
}

func (b *Backend) deleteLock() string {
	if b.server != nil && b.server.lightweightDelete() && !b.options.MutationsSync {
		return writes.DeleteLock()
	}

	return fmt.Sprintf("ALTER TABLE %s DELETE WHERE %s SETTINGS mutations_sync = 2", Table, writes.LockPredicate())
}

func (b *Backend) DisableRecords(ctx context.Context, version int64) error {
	return b.conn.Exec(ctx, transition(fmt.Sprintf("'%s'", ledger.Disabled), "version_id > ?"), version)
}

func (b *Backend) UpsertRecord(ctx context.Context, rec ledger.Record) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?, '%s', ?, now64(3), now64(3))",
		Table,
		columns,
		ledger.Ready,
	)

	return b.conn.Exec(ctx, query, rec.VersionID, rec.ObjectType, rec.NameBefore, rec.NameAfter, rec.Checksum)
}

func (b *Backend) UpdateRecord(ctx context.Context, status ledger.Status, version int64) error {
	return b.conn.Exec(ctx, transition("?", "version_id = ?"), string(status), version)
}

// Records returns every ledger row except the lock sentinel.
func (b *Backend) Records(ctx context.Context) ([]ledger.Record, error) {
	rows, err := b.conn.Query(ctx, reads.Records())
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
