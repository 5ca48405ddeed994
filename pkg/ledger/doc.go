// Package ledger defines the records table every backend keeps in the target
// database to track which versions touched which objects.
//
// One row is written per affected object per version, keyed by
// (version_id, object_type, object_name_before, object_name_after). Rows are
// inserted as READY before a version's statements run and move to APPLIED or
// ROLLED_BACK afterwards. Rows above the resolved current version are marked
// DISABLED at the start of every run.
//
// Backends that cannot hold a table lock use a sentinel row (version 0, every
// name column set to LOCK, status LOCKED) as an advisory lock.
//
// The package only holds the shared vocabulary: statuses, the Record type, the
// lock sentinel, the SQL templates used by the database/sql based backends,
// and the engine errors they return.
package ledger
