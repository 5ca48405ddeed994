package lakehouse

import (
	"context"
	"fmt"

	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/sqlstore"

	_ "github.com/databricks/databricks-sql-go"
)

// DefaultDriver is the database/sql driver used when none is configured.
const DefaultDriver = "databricks"

// Table is the records table.
const Table = ledger.Schema + ".records"

// Options configures a lakehouse backend.
type Options struct {
	// Driver is the database/sql driver name. Defaults to DefaultDriver.
	Driver string

	// Schemas limits snapshots of Spark catalogs to these schemas. All
	// schemas are listed when empty.
	Schemas []string
}

// Flavor describes the ledger of a catalog.
func Flavor(catalog Catalog, opts Options) sqlstore.Flavor {
	snap := &snapshotter{catalog: catalog, schemas: opts.Schemas}

	return sqlstore.Flavor{
		Name:    catalog.String(),
		Dialect: catalog.Dialect(),
		Setup: []string{
			"CREATE DATABASE IF NOT EXISTS " + ledger.Schema,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version_id BIGINT,
    object_type STRING,
    object_name_before STRING,
    object_name_after STRING,
    status STRING,
    checksum STRING,
    dtm_created_at TIMESTAMP,
    dtm_updated_at TIMESTAMP
)
USING %s`, Table, catalog.Using()),
		},
		Queries: ledger.Queries{Table: Table, Placeholder: ledger.Question, Now: "current_timestamp()"},
		Merge:   true,
		Snapshot: func(ctx context.Context, q sqlstore.Querier) (string, error) {
			return snap.snapshot(ctx, queryFetcher(q))
		},
	}
}

// Open connects to the lakehouse at dsn.
func Open(ctx context.Context, catalog Catalog, dsn string, opts Options) (*sqlstore.Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DefaultDriver
	}

	return sqlstore.Open(ctx, driver, dsn, Flavor(catalog, opts))
}

// queryFetcher reads every row of a query.
func queryFetcher(q sqlstore.Querier) fetchFunc {
	return func(ctx context.Context, query string) ([]row, error) {
		rows, err := q.QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()

		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}

		var out []row
		for rows.Next() {
			values := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range values {
				ptrs[i] = &values[i]
			}

			if err := rows.Scan(ptrs...); err != nil {
				return nil, err
			}

			for i, v := range values {
				if b, ok := v.([]byte); ok {
					values[i] = string(b)
				}
			}

			out = append(out, row{columns: cols, values: values})
		}

		return out, rows.Err()
	}
}
