// Package postgres is the transactional PostgreSQL backend built on pgx.
//
// The ledger lives in swellow.records. Inside a transaction the records table
// is locked with LOCK TABLE ... NOWAIT, so a second run fails fast instead of
// queueing behind the first. Runs without a transaction fall back to the
// sentinel lock row.
//
// Snapshots shell out to pg_dump, which must be on PATH and match the server's
// major version.
package postgres
