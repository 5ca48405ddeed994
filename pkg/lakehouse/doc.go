// Package lakehouse is the non-transactional backend for Spark and Databricks
// catalogs, reached through database/sql.
//
// Three catalogs are supported:
//
//   - databricks-delta: Delta tables in Databricks Unity Catalog
//   - spark-delta: Delta tables behind a Spark SQL endpoint
//   - spark-iceberg: Iceberg tables behind a Spark SQL endpoint
//
// The ledger is a swellow.records table in the catalog's own format. Records
// are upserted with MERGE INTO and locking uses the sentinel row.
//
// Snapshots prefer SHOW CREATE TABLE. When a Spark Delta catalog cannot
// produce one for a table, the statement is rebuilt from DESCRIBE TABLE and
// DESCRIBE DETAIL. Views without a CREATE statement are skipped.
package lakehouse
