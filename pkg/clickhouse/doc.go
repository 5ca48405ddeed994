// Package clickhouse is the non-transactional ClickHouse backend.
//
// ClickHouse has no transactions, so every statement of a run is applied as
// it executes and a failed run leaves earlier statements in place. Dry runs
// are rejected before anything touches the server.
//
// The ledger is swellow.records, a ReplacingMergeTree keyed on the record
// identity and versioned by dtm_updated_at. Status changes are written as new
// rows and every read uses FINAL, so the latest row for a key always wins.
//
// Locking uses the sentinel row. It is removed with a lightweight DELETE on
// servers that support it (23.3 and later) and with a synchronous mutation
// otherwise.
//
// Example usage:
//
//	backend, err := clickhouse.Open(ctx, "clickhouse://localhost:9000/default", clickhouse.ClientOptions{})
//	if err != nil {
//		return err
//	}
//	defer backend.Close()
//
//	exec := executor.New(executor.Config{Backend: backend, Dir: "./migrations"})
//	res, err := exec.Migrate(ctx, executor.Options{Direction: migrator.Up})
//
// Snapshots are rebuilt from the system tables: databases first, then tables
// and dictionaries, then views. Every statement is checked with the ClickHouse
// dialect of the parser before it is written.
package clickhouse
