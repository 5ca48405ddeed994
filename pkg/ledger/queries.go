package ledger

import (
	"fmt"
	"strings"
)

// Placeholder is the bind parameter style of a database/sql driver.
type Placeholder int

const (
	// Question binds parameters as ?.
	Question Placeholder = iota
	// Dollar binds parameters as $1, $2, ...
	Dollar
)

// Queries renders the ledger statements for one records table.
type Queries struct {
	// Table is the fully qualified records table, e.g. swellow.records.
	Table string

	// Placeholder is the driver's bind parameter style.
	Placeholder Placeholder

	// Now is the SQL expression for the current timestamp. Defaults to
	// CURRENT_TIMESTAMP.
	Now string
}

func (q Queries) arg(n int) string {
	if q.Placeholder == Dollar {
		return fmt.Sprintf("$%d", n)
	}

	return "?"
}

func (q Queries) now() string {
	if q.Now == "" {
		return "CURRENT_TIMESTAMP"
	}

	return q.Now
}

// LockPredicate is the WHERE condition matching the sentinel row.
func (q Queries) LockPredicate() string {
	return fmt.Sprintf(
		"version_id = %d AND object_type = '%s' AND object_name_before = '%s' AND object_name_after = '%s'",
		LockVersion,
		LockName,
		LockName,
		LockName,
	)
}

// LatestVersion selects the highest version recorded as applied or tested.
func (q Queries) LatestVersion() string {
	return fmt.Sprintf(
		"SELECT MAX(version_id) AS version_id FROM %s WHERE status IN ('%s', '%s')",
		q.Table,
		Applied,
		Tested,
	)
}

// LockExists selects a row when the sentinel is present.
func (q Queries) LockExists() string {
	return fmt.Sprintf("SELECT 1 FROM %s WHERE %s AND status = '%s' LIMIT 1", q.Table, q.LockPredicate(), Locked)
}

// InsertLock inserts the sentinel row.
func (q Queries) InsertLock() string {
	return fmt.Sprintf(
		"INSERT INTO %s (version_id, object_type, object_name_before, object_name_after, status, checksum, dtm_created_at, dtm_updated_at) "+
			"VALUES (%d, '%s', '%s', '%s', '%s', '%s', %s, %s)",
		q.Table,
		LockVersion,
		LockName,
		LockName,
		LockName,
		Locked,
		LockChecksum,
		q.now(),
		q.now(),
	)
}

// InsertLockIfAbsent inserts the sentinel row unless it already exists. The
// caller checks the affected row count to detect a conflict.
func (q Queries) InsertLockIfAbsent() string {
	return q.InsertLock() + " ON CONFLICT (version_id, object_type, object_name_before, object_name_after) DO NOTHING"
}

// DeleteLock removes the sentinel row.
func (q Queries) DeleteLock() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", q.Table, q.LockPredicate())
}

// Disable marks every record above a version as DISABLED. Binds: version.
func (q Queries) Disable() string {
	return fmt.Sprintf(
		"UPDATE %s SET status = '%s', dtm_updated_at = %s WHERE version_id > %s AND object_type <> '%s'",
		q.Table,
		Disabled,
		q.now(),
		q.arg(1),
		LockName,
	)
}

// Update sets the status of every record of a version. Binds: status, version.
func (q Queries) Update() string {
	return fmt.Sprintf(
		"UPDATE %s SET status = %s, dtm_updated_at = %s WHERE version_id = %s AND object_type <> '%s'",
		q.Table,
		q.arg(1),
		q.now(),
		q.arg(2),
		LockName,
	)
}

// Upsert inserts a READY record or resets an existing one using
// INSERT ... ON CONFLICT. Binds: type, before, after, version, checksum.
func (q Queries) Upsert() string {
	return fmt.Sprintf(
		"INSERT INTO %s (object_type, object_name_before, object_name_after, version_id, status, checksum, dtm_created_at, dtm_updated_at) "+
			"VALUES (%s, %s, %s, %s, '%s', %s, %s, %s) "+
			"ON CONFLICT (version_id, object_type, object_name_before, object_name_after) "+
			"DO UPDATE SET status = excluded.status, checksum = excluded.checksum, dtm_updated_at = excluded.dtm_updated_at",
		q.Table,
		q.arg(1),
		q.arg(2),
		q.arg(3),
		q.arg(4),
		Ready,
		q.arg(5),
		q.now(),
		q.now(),
	)
}

// Merge is the Upsert equivalent for engines that only support MERGE INTO.
// Binds: type, before, after, version, checksum.
func (q Queries) Merge() string {
	var b strings.Builder

	fmt.Fprintf(&b, "MERGE INTO %s AS target USING (SELECT ", q.Table)
	fmt.Fprintf(&b, "%s AS object_type, %s AS object_name_before, %s AS object_name_after, ", q.arg(1), q.arg(2), q.arg(3))
	fmt.Fprintf(&b, "CAST(%s AS BIGINT) AS version_id, '%s' AS status, %s AS checksum) AS source ", q.arg(4), Ready, q.arg(5))
	b.WriteString("ON target.version_id = source.version_id ")
	b.WriteString("AND target.object_type = source.object_type ")
	b.WriteString("AND target.object_name_before = source.object_name_before ")
	b.WriteString("AND target.object_name_after = source.object_name_after ")
	fmt.Fprintf(&b, "WHEN MATCHED THEN UPDATE SET target.status = source.status, target.checksum = source.checksum, target.dtm_updated_at = %s ", q.now())
	b.WriteString("WHEN NOT MATCHED THEN INSERT (object_type, object_name_before, object_name_after, version_id, status, checksum, dtm_created_at, dtm_updated_at) ")
	fmt.Fprintf(&b, "VALUES (source.object_type, source.object_name_before, source.object_name_after, source.version_id, source.status, source.checksum, %s, %s)", q.now(), q.now())

	return b.String()
}

// Records selects every record ordered by version, excluding the sentinel.
func (q Queries) Records() string {
	return fmt.Sprintf(
		"SELECT version_id, object_type, object_name_before, object_name_after, status, checksum FROM %s "+
			"WHERE object_type <> '%s' ORDER BY version_id, object_type, object_name_before, object_name_after",
		q.Table,
		LockName,
	)
}
