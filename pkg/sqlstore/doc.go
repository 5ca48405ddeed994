// Package sqlstore implements the ledger operations shared by every backend
// reached through database/sql.
//
// A Store wraps a *sql.DB and a Flavor describing the engine: the statements
// creating the records table, the bind parameter style, whether the engine
// supports transactions, how records are upserted and how the schema is
// dumped. The sqlite and lakehouse packages provide flavors.
//
// While a transaction is open every statement runs on it. Otherwise
// statements run directly on the pool.
package sqlstore
