// Package sqlite provides an embedded, transactional backend on top of
// modernc.org/sqlite.
//
// The ledger lives in a swellow_records table in the target database since
// SQLite has no schemas. Locking uses the sentinel row; SQLite's own write
// lock already serialises concurrent transactions on the same file.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/parser"
	"github.com/pseudomuto/swellow/pkg/sqlstore"

	_ "modernc.org/sqlite"
)

// Table is the records table.
const Table = "swellow_records"

const createTable = `CREATE TABLE IF NOT EXISTS swellow_records (
    version_id INTEGER NOT NULL,
    object_type TEXT NOT NULL,
    object_name_before TEXT NOT NULL,
    object_name_after TEXT NOT NULL,
    status TEXT NOT NULL,
    checksum TEXT NOT NULL,
    dtm_created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    dtm_updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (version_id, object_type, object_name_before, object_name_after)
)`

const schemaQuery = `SELECT sql FROM sqlite_master
WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%' AND tbl_name <> 'swellow_records'
ORDER BY CASE type WHEN 'table' THEN 0 WHEN 'index' THEN 1 WHEN 'view' THEN 2 ELSE 3 END, name`

// Flavor describes the SQLite ledger.
func Flavor() sqlstore.Flavor {
	return sqlstore.Flavor{
		Name:          "sqlite",
		Dialect:       parser.SQLite,
		Transactional: true,
		Setup:         []string{createTable},
		Queries:       ledger.Queries{Table: Table, Placeholder: ledger.Question},
		AtomicLock:    true,
		Snapshot:      snapshot,
	}
}

// Open opens the database at dsn, a file path or :memory:.
func Open(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	if dsn != ":memory:" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}

		dsn += sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	// A single connection keeps :memory: databases alive across calls and
	// serialises writes.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to connect to sqlite")
	}

	return sqlstore.New(db, Flavor()), nil
}

func snapshot(ctx context.Context, q sqlstore.Querier) (string, error) {
	rows, err := q.QueryContext(ctx, schemaQuery)
	if err != nil {
		return "", errors.Wrap(err, "failed to read sqlite_master")
	}
	defer func() { _ = rows.Close() }()

	var sb strings.Builder
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", err
		}

		sb.WriteString(strings.TrimSpace(stmt))
		sb.WriteString(";\n\n")
	}

	return sb.String(), rows.Err()
}
